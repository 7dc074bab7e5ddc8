package matchmaking

import (
	"go.uber.org/zap"

	"duel/internal/metrics"
)

// Relay forwards one gameplay event to the sender's opponent, resolved
// through match membership rather than socket identity. Fire-and-forget:
// if the opponent has no writable socket the event is dropped, because a
// missing socket means a disconnect is already being handled.
func (m *Manager) Relay(playerID, eventType string, event interface{}) {
	m.mu.Lock()
	matchID, ok := m.playerMatch[playerID]
	if !ok {
		m.mu.Unlock()
		m.logger.Info("relay from player with no match, dropping",
			zap.String("playerId", playerID), zap.String("eventType", eventType))
		return
	}
	session, ok := m.sessions[matchID]
	if !ok {
		m.mu.Unlock()
		return
	}
	opponent := session.Opponent(playerID)
	conn := opponent.Conn
	m.mu.Unlock()

	if conn == nil {
		return
	}
	if err := conn.WriteJSON(event); err != nil {
		m.logger.Debug("relay dropped, opponent socket not writable",
			zap.String("matchId", matchID), zap.Error(err))
		return
	}
	metrics.RelayedMessages.WithLabelValues(eventType).Inc()
}
