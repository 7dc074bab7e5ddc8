package matchmaking

import (
	"encoding/json"

	"go.uber.org/zap"

	"duel/internal/models"
)

// EventsChannel is the redis pub/sub channel sibling services subscribe to
// for session lifecycle events.
const EventsChannel = "duels"

type sessionEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Topic   string `json:"topic"`
}

// publishEvent announces a session lifecycle change on the duels channel.
// Best-effort: publish failures are logged, never propagated into the match
// flow.
func (m *Manager) publishEvent(eventType string, session *models.MatchSession) {
	if m.rdb == nil {
		return
	}

	payload, err := json.Marshal(sessionEvent{
		Type:    eventType,
		MatchID: session.ID,
		Player1: session.Player1.ID,
		Player2: session.Player2.ID,
		Topic:   session.Topic,
	})
	if err != nil {
		m.logger.Warn("failed to marshal session event", zap.Error(err))
		return
	}

	if err := m.rdb.Publish(m.ctx, EventsChannel, payload).Err(); err != nil {
		m.logger.Warn("failed to publish session event",
			zap.String("type", eventType), zap.Error(err))
	}
}
