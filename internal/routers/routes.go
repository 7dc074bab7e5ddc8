package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"duel/internal/matchmaking"
)

func DuelRoutes(r chi.Router, m *matchmaking.Manager) {
	r.Route("/api/v1/duel", func(r chi.Router) {
		r.Get("/check", m.CheckHandler)
		r.Get("/queue/count", m.QueueCountHandler)
		r.HandleFunc("/ws", m.WsHandler)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}
