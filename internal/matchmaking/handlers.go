package matchmaking

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"duel/internal/models"
	"duel/internal/utils"
)

// WsHandler upgrades the connection and runs the per-socket read loop.
// Malformed frames are logged and skipped; only a read error (the peer
// closing) terminates the loop and feeds disconnect resolution.
func (m *Manager) WsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	m.logger.Info("websocket connected", zap.String("remote", r.RemoteAddr))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.HandleDisconnect(conn)
			conn.Close()
			return
		}
		m.dispatch(conn, data)
	}
}

// dispatch validates one inbound frame at the boundary and routes it. One
// bad message never terminates the connection.
func (m *Manager) dispatch(conn models.Conn, data []byte) {
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		m.logger.Warn("malformed message, ignoring", zap.Error(err))
		return
	}

	switch env.Type {
	case models.MsgJoinQueue:
		var msg models.JoinQueueMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.PlayerID == "" {
			m.logger.Warn("invalid join_queue message", zap.Error(err))
			return
		}
		m.AddToQueue(&models.Player{
			ID:         msg.PlayerID,
			Username:   msg.Username,
			Rating:     msg.Rating,
			Language:   msg.Language,
			Difficulty: msg.Difficulty,
			Topic:      msg.Topic,
			Conn:       conn,
			JoinedAt:   time.Now(),
		})

	case models.MsgLeaveQueue:
		m.RemoveFromQueue(conn)

	case models.MsgRegisterMatchSocket:
		var msg models.RegisterMatchSocketMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.PlayerID == "" || msg.MatchID == "" {
			m.logger.Warn("invalid register_match_socket message", zap.Error(err))
			return
		}
		m.UpdatePlayerSocket(msg.PlayerID, msg.MatchID, conn)

	case models.MsgPlayerMessage:
		var msg models.PlayerMessageMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.PlayerID == "" {
			m.logger.Warn("invalid player_message", zap.Error(err))
			return
		}
		m.Relay(msg.PlayerID, models.EvtOpponentMessage, models.OpponentMessageMsg{
			Type:      models.EvtOpponentMessage,
			Text:      msg.Text,
			Sender:    msg.Sender,
			Timestamp: msg.Timestamp,
		})

	case models.MsgPlayerTurnComplete:
		var msg models.PlayerTurnCompleteMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.PlayerID == "" {
			m.logger.Warn("invalid player_turn_complete", zap.Error(err))
			return
		}
		m.Relay(msg.PlayerID, models.EvtOpponentTurnComplete, models.OpponentTurnCompleteMsg{
			Type:      models.EvtOpponentTurnComplete,
			TurnPhase: msg.TurnPhase,
		})

	case models.MsgPlayerForfeit:
		var msg models.PlayerForfeitMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.PlayerID == "" || msg.MatchID == "" {
			m.logger.Warn("invalid player_forfeit", zap.Error(err))
			return
		}
		m.HandleForfeit(msg.MatchID, msg.PlayerID)

	case models.MsgPlayerGradingResult:
		var msg models.PlayerGradingResultMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.PlayerID == "" {
			m.logger.Warn("invalid player_grading_result", zap.Error(err))
			return
		}
		m.Relay(msg.PlayerID, models.EvtOpponentGradingResult, models.OpponentGradingResultMsg{
			Type:    models.EvtOpponentGradingResult,
			Grading: msg.Grading,
		})

	case models.MsgMatchEnd:
		var msg models.MatchEndMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.MatchID == "" {
			m.logger.Warn("invalid match_end", zap.Error(err))
			return
		}
		m.EndMatch(msg.MatchID)

	default:
		m.logger.Warn("unknown message type", zap.String("type", env.Type))
	}
}

// CheckHandler lets a reloading client discover whether it still has a live
// session.
func (m *Manager) CheckHandler(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "playerId required"})
		return
	}

	session := m.Session(playerID)
	if session == nil {
		utils.WriteJSON(w, http.StatusOK, models.CheckResp{InMatch: false})
		return
	}

	token := session.Token1
	if playerID == session.Player2.ID {
		token = session.Token2
	}

	utils.WriteJSON(w, http.StatusOK, models.CheckResp{
		InMatch:    true,
		MatchID:    session.ID,
		Topic:      session.Topic,
		Language:   session.Player1.Language,
		Difficulty: session.Player1.Difficulty,
		Token:      token,
	})
}

// QueueCountHandler reports the current queue depth.
func (m *Manager) QueueCountHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]int{"waiting": m.WaitingCount()})
}
