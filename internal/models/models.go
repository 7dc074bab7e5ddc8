package models

import (
	"time"
)

// Difficulty levels
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Conn is the slice of a websocket connection the matchmaking core needs.
// *websocket.Conn satisfies it; tests substitute an in-memory recorder.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Player is one queued or matched participant. Conn is mutable: it is
// replaced when the client registers its dedicated gameplay socket.
type Player struct {
	ID         string
	Username   string
	Rating     int
	Language   string
	Difficulty string
	Topic      string // optional practice-mode preference
	Conn       Conn
	JoinedAt   time.Time
}

// VocabWord is one entry of the generated vocabulary set shared by both
// players of a match.
type VocabWord struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
}

// MatchSession pairs exactly two players plus the content generated for
// their duel. Player1's language/difficulty is authoritative: vocabulary is
// generated once, for player1's settings, and both clients render with them.
type MatchSession struct {
	ID         string
	Player1    *Player
	Player2    *Player
	Topic      string
	Vocabulary []VocabWord
	CreatedAt  time.Time

	// Registered flips true once the corresponding client has bound its
	// gameplay socket via register_match_socket.
	Player1Registered bool
	Player2Registered bool

	// Signed tokens handed to each player in match_found, consumed by
	// downstream session services.
	Token1 string
	Token2 string
}

// Opponent returns the other participant of the session, or nil if playerID
// is not part of it.
func (s *MatchSession) Opponent(playerID string) *Player {
	switch playerID {
	case s.Player1.ID:
		return s.Player2
	case s.Player2.ID:
		return s.Player1
	default:
		return nil
	}
}

// Slot returns the player record and registered flag for playerID.
func (s *MatchSession) Slot(playerID string) (*Player, bool) {
	switch playerID {
	case s.Player1.ID:
		return s.Player1, s.Player1Registered
	case s.Player2.ID:
		return s.Player2, s.Player2Registered
	default:
		return nil, false
	}
}

// CheckResp is the reconnect-support response: whether the player currently
// has a live session, and what the client needs to rejoin it.
type CheckResp struct {
	InMatch    bool   `json:"inMatch"`
	MatchID    string `json:"matchId,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Language   string `json:"language,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Token      string `json:"token,omitempty"`
}

// Resp is the generic HTTP response wrapper.
type Resp struct {
	OK   bool        `json:"ok"`
	Info interface{} `json:"info"`
}
