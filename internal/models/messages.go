package models

import (
	"encoding/json"
)

// Client -> server message types. Every frame is a flat JSON object with a
// "type" discriminator; the envelope is decoded first, then the full frame
// is decoded into the concrete struct for that type.
const (
	MsgJoinQueue           = "join_queue"
	MsgLeaveQueue          = "leave_queue"
	MsgRegisterMatchSocket = "register_match_socket"
	MsgPlayerMessage       = "player_message"
	MsgPlayerTurnComplete  = "player_turn_complete"
	MsgPlayerForfeit       = "player_forfeit"
	MsgPlayerGradingResult = "player_grading_result"
	MsgMatchEnd            = "match_end"
)

// Server -> client event types.
const (
	EvtMatchFound            = "match_found"
	EvtOpponentMessage       = "opponent_message"
	EvtOpponentTurnComplete  = "opponent_turn_complete"
	EvtOpponentDisconnected  = "opponent_disconnected"
	EvtOpponentForfeit       = "opponent_forfeit"
	EvtOpponentGradingResult = "opponent_grading_result"
)

// Envelope carries only the discriminator.
type Envelope struct {
	Type string `json:"type"`
}

type JoinQueueMsg struct {
	Type       string `json:"type"`
	PlayerID   string `json:"playerId"`
	Username   string `json:"username"`
	Rating     int    `json:"rating"`
	Language   string `json:"language"`
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic,omitempty"`
}

type RegisterMatchSocketMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	MatchID  string `json:"matchId"`
}

type PlayerMessageMsg struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

type PlayerTurnCompleteMsg struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	TurnPhase string `json:"turnPhase"`
}

type PlayerForfeitMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	MatchID  string `json:"matchId"`
}

type PlayerGradingResultMsg struct {
	Type     string          `json:"type"`
	PlayerID string          `json:"playerId"`
	MatchID  string          `json:"matchId"`
	Grading  json.RawMessage `json:"grading"`
}

type MatchEndMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}

// OpponentSummary is what each player learns about the other side.
type OpponentSummary struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

// MatchFoundMsg is sent to both players' queue-time sockets once a match is
// created, and to a solo player when the bot fallback fires (IsAI true).
// Language and Difficulty are player1's for both recipients.
type MatchFoundMsg struct {
	Type        string          `json:"type"`
	MatchID     string          `json:"matchId"`
	Opponent    OpponentSummary `json:"opponent"`
	Topic       string          `json:"topic"`
	Vocabulary  []VocabWord     `json:"vocabulary"`
	Language    string          `json:"language"`
	Difficulty  string          `json:"difficulty"`
	IsAI        bool            `json:"isAI"`
	StartsFirst bool            `json:"startsFirst"`
	Token       string          `json:"token,omitempty"`
}

type OpponentMessageMsg struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

type OpponentTurnCompleteMsg struct {
	Type      string `json:"type"`
	TurnPhase string `json:"turnPhase"`
}

type OpponentDisconnectedMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}

type OpponentForfeitMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}

type OpponentGradingResultMsg struct {
	Type    string          `json:"type"`
	Grading json.RawMessage `json:"grading"`
}
