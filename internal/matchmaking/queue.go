package matchmaking

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"duel/internal/elo"
	"duel/internal/metrics"
	"duel/internal/models"
)

// AddToQueue registers the player's socket, appends the player to the
// waiting queue and immediately attempts to pair it. A player already in a
// live match is refused; a player already queued has its record replaced
// (rejoin with a fresh socket).
func (m *Manager) AddToQueue(p *models.Player) {
	m.mu.Lock()

	if matchID, inMatch := m.playerMatch[p.ID]; inMatch {
		m.mu.Unlock()
		m.logger.Warn("join_queue for player already in a match",
			zap.String("playerId", p.ID), zap.String("matchId", matchID))
		return
	}

	if prev := m.removeFromQueueLocked(p.ID); prev != nil {
		delete(m.conns, prev.Conn)
	}

	m.queue = append(m.queue, p)
	m.conns[p.Conn] = p
	m.setQueueDepthLocked()
	m.mu.Unlock()

	metrics.PlayersQueued.Inc()
	m.logger.Info("player joined queue",
		zap.String("playerId", p.ID),
		zap.String("language", p.Language),
		zap.String("difficulty", p.Difficulty),
		zap.Int("rating", p.Rating))

	m.tryMatch(p)
}

// tryMatch scans the queue for the compatible candidate nearest in rating.
// Compatibility is symmetric (same language, same difficulty, rating within
// the window), so scanning only from the arriving player's side is safe. If
// nobody fits, a bot fallback is scheduled; the callback re-checks queue
// membership when it fires, so being human-matched in the meantime turns it
// into a no-op.
func (m *Manager) tryMatch(p *models.Player) {
	m.mu.Lock()

	if m.findQueuedLocked(p.ID) == nil {
		m.mu.Unlock()
		return
	}

	var best *models.Player
	bestDiff := m.cfg.RatingWindow + 1
	for _, cand := range m.queue {
		if cand.ID == p.ID || cand.Language != p.Language || cand.Difficulty != p.Difficulty {
			continue
		}
		if !elo.WithinWindow(cand.Rating, p.Rating, m.cfg.RatingWindow) {
			continue
		}
		if diff := elo.RatingDiff(cand.Rating, p.Rating); diff < bestDiff {
			best = cand
			bestDiff = diff
		}
	}

	if best == nil {
		m.mu.Unlock()
		time.AfterFunc(m.cfg.BotFallbackDelay, func() {
			m.assignAIBot(p)
		})
		return
	}

	m.removeFromQueueLocked(p.ID)
	m.removeFromQueueLocked(best.ID)
	m.setQueueDepthLocked()
	m.mu.Unlock()

	// The earlier-queued player takes the player1 slot; its language and
	// difficulty drive content generation for both sides.
	m.createMatch(best, p)
}

// RemoveFromQueue drops the player associated with a socket from the queue.
// Idempotent: unknown sockets and already-removed players are no-ops.
func (m *Manager) RemoveFromQueue(conn models.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.conns[conn]
	if !ok {
		return
	}
	if m.removeFromQueueLocked(p.ID) != nil {
		delete(m.conns, conn)
		m.setQueueDepthLocked()
		m.logger.Info("player left queue", zap.String("playerId", p.ID))
	}
}

// assignAIBot fires when the bot fallback delay elapses. The player may have
// been matched, may have left, or may have left and rejoined as a fresh queue
// entry since the timer was scheduled, so the exact queued record is
// re-verified first; a rejoined entry gets its own timer.
func (m *Manager) assignAIBot(p *models.Player) {
	m.mu.Lock()
	if m.findQueuedLocked(p.ID) != p {
		m.mu.Unlock()
		return
	}
	m.removeFromQueueLocked(p.ID)
	delete(m.conns, p.Conn)
	m.setQueueDepthLocked()
	conn := p.Conn
	m.mu.Unlock()

	topic := m.resolveTopic(p.Topic)
	botName := m.cfg.BotNames[rand.Intn(len(m.cfg.BotNames))]
	vocabulary := m.vocab.Vocabulary(m.ctx, topic, p.Language, p.Difficulty)

	// No server-side session for bot matches: gameplay against the bot is
	// driven entirely by the client and the AI content service.
	m.sendTo(conn, models.MatchFoundMsg{
		Type:    models.EvtMatchFound,
		MatchID: "bot-" + uuid.NewString(),
		Opponent: models.OpponentSummary{
			Username: botName,
			Rating:   elo.BotRating(p.Difficulty),
		},
		Topic:       topic,
		Vocabulary:  vocabulary,
		Language:    p.Language,
		Difficulty:  p.Difficulty,
		IsAI:        true,
		StartsFirst: rand.Intn(2) == 0,
	})

	metrics.MatchesCreated.WithLabelValues("bot").Inc()
	metrics.TimeToMatch.Observe(time.Since(p.JoinedAt).Seconds())
	m.logger.Info("assigned bot opponent",
		zap.String("playerId", p.ID),
		zap.String("botName", botName),
		zap.String("topic", topic))
}

// findQueuedLocked returns the queued player with this id, or nil.
func (m *Manager) findQueuedLocked(playerID string) *models.Player {
	for _, p := range m.queue {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// removeFromQueueLocked removes and returns the queued player with this id,
// or nil if absent.
func (m *Manager) removeFromQueueLocked(playerID string) *models.Player {
	for i, p := range m.queue {
		if p.ID == playerID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return p
		}
	}
	return nil
}
