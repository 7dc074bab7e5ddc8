package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlayersQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duel_players_queued_total",
		Help: "Players that joined the matchmaking queue.",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "duel_queue_depth",
		Help: "Players currently waiting in the queue.",
	})

	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duel_matches_created_total",
		Help: "Matches created, by opponent kind.",
	}, []string{"kind"}) // human | bot

	Forfeits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duel_forfeits_total",
		Help: "Matches ended by forfeit or disconnect.",
	})

	RelayedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duel_relayed_messages_total",
		Help: "Gameplay events relayed between players, by event type.",
	}, []string{"type"})

	TimeToMatch = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "duel_time_to_match_seconds",
		Help:    "Seconds between joining the queue and receiving match_found.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30},
	})
)
