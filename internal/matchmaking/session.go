package matchmaking

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"duel/internal/metrics"
	"duel/internal/models"
	"duel/internal/utils"
)

// createMatch pairs two players removed from the queue. p1's topic
// preference and language/difficulty are authoritative: vocabulary is
// generated once for p1's settings and both match_found payloads carry them,
// so p2's client renders with p1's settings even if p2 asked for different
// ones.
//
// Both players are already out of the queue before the vocabulary call, so
// interleaved joins during the await cannot double-book either of them.
func (m *Manager) createMatch(p1, p2 *models.Player) {
	topic := m.resolveTopic(p1.Topic)
	vocabulary := m.vocab.Vocabulary(m.ctx, topic, p1.Language, p1.Difficulty)

	matchID := fmt.Sprintf("%s-%s-%d", p1.ID, p2.ID, time.Now().UnixMilli())
	p1StartsFirst := rand.Intn(2) == 0

	token1, err := utils.GenerateMatchToken(matchID, p1.ID, m.jwtSecret)
	if err != nil {
		m.logger.Error("failed to sign match token", zap.Error(err))
	}
	token2, err := utils.GenerateMatchToken(matchID, p2.ID, m.jwtSecret)
	if err != nil {
		m.logger.Error("failed to sign match token", zap.Error(err))
	}

	session := &models.MatchSession{
		ID:         matchID,
		Player1:    p1,
		Player2:    p2,
		Topic:      topic,
		Vocabulary: vocabulary,
		CreatedAt:  time.Now(),
		Token1:     token1,
		Token2:     token2,
	}

	m.mu.Lock()
	m.sessions[matchID] = session
	m.playerMatch[p1.ID] = matchID
	m.playerMatch[p2.ID] = matchID
	conn1, conn2 := p1.Conn, p2.Conn
	m.mu.Unlock()

	m.sendTo(conn1, models.MatchFoundMsg{
		Type:        models.EvtMatchFound,
		MatchID:     matchID,
		Opponent:    models.OpponentSummary{Username: p2.Username, Rating: p2.Rating},
		Topic:       topic,
		Vocabulary:  vocabulary,
		Language:    p1.Language,
		Difficulty:  p1.Difficulty,
		StartsFirst: p1StartsFirst,
		Token:       token1,
	})
	m.sendTo(conn2, models.MatchFoundMsg{
		Type:        models.EvtMatchFound,
		MatchID:     matchID,
		Opponent:    models.OpponentSummary{Username: p1.Username, Rating: p1.Rating},
		Topic:       topic,
		Vocabulary:  vocabulary,
		Language:    p1.Language,
		Difficulty:  p1.Difficulty,
		StartsFirst: !p1StartsFirst,
		Token:       token2,
	})

	metrics.MatchesCreated.WithLabelValues("human").Inc()
	metrics.TimeToMatch.Observe(time.Since(p1.JoinedAt).Seconds())
	metrics.TimeToMatch.Observe(time.Since(p2.JoinedAt).Seconds())
	m.publishEvent("match_created", session)
	m.logger.Info("match created",
		zap.String("matchId", matchID),
		zap.String("player1", p1.ID),
		zap.String("player2", p2.ID),
		zap.String("topic", topic),
		zap.Int("vocabWords", len(vocabulary)))
}

// UpdatePlayerSocket handles register_match_socket: the client binds its
// dedicated gameplay socket to an already-created session, superseding the
// socket used while queueing. Any stale index entries for the player are
// purged first so a later close of the old socket cannot be misattributed
// to the live session.
func (m *Manager) UpdatePlayerSocket(playerID, matchID string, conn models.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[matchID]
	if !ok {
		m.logger.Info("register for unknown match, ignoring",
			zap.String("playerId", playerID), zap.String("matchId", matchID))
		return
	}

	for c, p := range m.conns {
		if p.ID == playerID && c != conn {
			delete(m.conns, c)
		}
	}

	switch playerID {
	case session.Player1.ID:
		session.Player1.Conn = conn
		session.Player1Registered = true
		m.conns[conn] = session.Player1
	case session.Player2.ID:
		session.Player2.Conn = conn
		session.Player2Registered = true
		m.conns[conn] = session.Player2
	default:
		m.logger.Warn("register from player not in match",
			zap.String("playerId", playerID), zap.String("matchId", matchID))
		return
	}

	m.logger.Info("gameplay socket registered",
		zap.String("playerId", playerID), zap.String("matchId", matchID))
}

// HandleDisconnect decides what a socket closure means:
//
//   - player still queued: drop from queue, done;
//   - player neither queued nor in a match: possibly mid-pairing (dequeued,
//     session not yet indexed while vocabulary generation is in flight);
//     defer a re-check for a session that appears bound to this socket;
//   - slot unregistered and inside the grace period: defer, then re-check —
//     the close is probably the queue-time socket going away while the
//     client switches to its gameplay socket;
//   - slot registered but the closing socket is not the bound one: stale
//     close, ignore;
//   - otherwise: genuine abandonment, forfeit now.
func (m *Manager) HandleDisconnect(conn models.Conn) {
	m.mu.Lock()

	p, ok := m.conns[conn]
	delete(m.conns, conn)
	if !ok {
		m.mu.Unlock()
		return
	}

	if m.removeFromQueueLocked(p.ID) != nil {
		m.setQueueDepthLocked()
		m.mu.Unlock()
		m.logger.Info("queued player disconnected", zap.String("playerId", p.ID))
		return
	}

	matchID, inMatch := m.playerMatch[p.ID]
	if !inMatch {
		m.mu.Unlock()
		playerID := p.ID
		time.AfterFunc(m.cfg.GracePeriod, func() {
			m.forfeitIfStillBound(playerID, conn)
		})
		return
	}
	session, ok := m.sessions[matchID]
	if !ok {
		m.mu.Unlock()
		return
	}

	slot, registered := session.Slot(p.ID)
	if slot == nil {
		m.mu.Unlock()
		return
	}

	if !registered {
		elapsed := time.Since(session.CreatedAt)
		if elapsed < m.cfg.GracePeriod {
			remaining := m.cfg.GracePeriod - elapsed
			m.mu.Unlock()
			playerID := p.ID
			time.AfterFunc(remaining, func() {
				m.forfeitIfUnregistered(matchID, playerID)
			})
			m.logger.Info("disconnect during grace period, deferring",
				zap.String("playerId", p.ID), zap.String("matchId", matchID),
				zap.Duration("remaining", remaining))
			return
		}
		m.mu.Unlock()
		m.ExecuteForfeit(matchID, p.ID)
		return
	}

	if slot.Conn != conn {
		// Lingering close of a superseded socket.
		m.mu.Unlock()
		m.logger.Info("stale socket closed, ignoring",
			zap.String("playerId", p.ID), zap.String("matchId", matchID))
		return
	}

	m.mu.Unlock()
	m.ExecuteForfeit(matchID, p.ID)
}

// forfeitIfUnregistered runs when a deferred grace window expires. The match
// may be long gone and the player may have registered by now; both are
// checked against live state before forfeiting.
func (m *Manager) forfeitIfUnregistered(matchID, playerID string) {
	m.mu.Lock()
	session, ok := m.sessions[matchID]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, registered := session.Slot(playerID); registered {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.ExecuteForfeit(matchID, playerID)
}

// forfeitIfStillBound re-checks a close that arrived while the player was
// between queue and session. Forfeit only if a session exists by now, the
// slot never registered, and the closed socket is still the bound one; a
// rejoin on a fresh socket supersedes the old close.
func (m *Manager) forfeitIfStillBound(playerID string, conn models.Conn) {
	m.mu.Lock()
	matchID, ok := m.playerMatch[playerID]
	if !ok {
		m.mu.Unlock()
		return
	}
	session, ok := m.sessions[matchID]
	if !ok {
		m.mu.Unlock()
		return
	}
	slot, registered := session.Slot(playerID)
	if registered || slot == nil || slot.Conn != conn {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.ExecuteForfeit(matchID, playerID)
}

// ExecuteForfeit tears down a session after a disconnect, notifying the
// opponent. Terminal and idempotent: a session already removed is a no-op.
func (m *Manager) ExecuteForfeit(matchID, playerID string) {
	m.teardown(matchID, playerID, models.EvtOpponentDisconnected)
}

// HandleForfeit tears down a session after an explicit player_forfeit
// message, notifying the opponent with a forfeit event.
func (m *Manager) HandleForfeit(matchID, playerID string) {
	m.teardown(matchID, playerID, models.EvtOpponentForfeit)
}

func (m *Manager) teardown(matchID, playerID, eventType string) {
	m.mu.Lock()
	session, ok := m.sessions[matchID]
	if !ok {
		m.mu.Unlock()
		return
	}
	opponent := session.Opponent(playerID)
	if opponent == nil {
		m.mu.Unlock()
		m.logger.Warn("forfeit from player not in match",
			zap.String("playerId", playerID), zap.String("matchId", matchID))
		return
	}
	m.removeSessionLocked(session)
	conn := opponent.Conn
	m.mu.Unlock()

	switch eventType {
	case models.EvtOpponentForfeit:
		m.sendTo(conn, models.OpponentForfeitMsg{Type: eventType, MatchID: matchID})
	default:
		m.sendTo(conn, models.OpponentDisconnectedMsg{Type: eventType, MatchID: matchID})
	}

	metrics.Forfeits.Inc()
	m.publishEvent("match_forfeited", session)
	m.logger.Info("match forfeited",
		zap.String("matchId", matchID), zap.String("playerId", playerID))
}

// EndMatch is the explicit, non-forfeit teardown: same cleanup, no opponent
// notification. Idempotent.
func (m *Manager) EndMatch(matchID string) {
	m.mu.Lock()
	session, ok := m.sessions[matchID]
	if !ok {
		m.mu.Unlock()
		return
	}
	m.removeSessionLocked(session)
	m.mu.Unlock()

	m.publishEvent("match_ended", session)
	m.logger.Info("match ended", zap.String("matchId", matchID))
}

// removeSessionLocked deletes the session and every index entry referring
// to it, so no lookup can observe a stale session afterwards.
func (m *Manager) removeSessionLocked(session *models.MatchSession) {
	delete(m.sessions, session.ID)
	delete(m.playerMatch, session.Player1.ID)
	delete(m.playerMatch, session.Player2.ID)
	for c, p := range m.conns {
		if p.ID == session.Player1.ID || p.ID == session.Player2.ID {
			delete(m.conns, c)
		}
	}
}
