package matchmaking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"duel/internal/config"
	"duel/internal/content"
	"duel/internal/models"
)

// fakeConn records every event written to it, standing in for a websocket
// connection.
type fakeConn struct {
	mu     sync.Mutex
	events []interface{}
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	c.events = append(c.events, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) snapshot() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]interface{}, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) matchFoundEvents() []models.MatchFoundMsg {
	var found []models.MatchFoundMsg
	for _, e := range c.snapshot() {
		if mf, ok := e.(models.MatchFoundMsg); ok {
			found = append(found, mf)
		}
	}
	return found
}

func (c *fakeConn) eventsOfType(eventType string) []interface{} {
	var out []interface{}
	for _, e := range c.snapshot() {
		switch v := e.(type) {
		case models.MatchFoundMsg:
			if v.Type == eventType {
				out = append(out, e)
			}
		case models.OpponentMessageMsg:
			if v.Type == eventType {
				out = append(out, e)
			}
		case models.OpponentTurnCompleteMsg:
			if v.Type == eventType {
				out = append(out, e)
			}
		case models.OpponentDisconnectedMsg:
			if v.Type == eventType {
				out = append(out, e)
			}
		case models.OpponentForfeitMsg:
			if v.Type == eventType {
				out = append(out, e)
			}
		case models.OpponentGradingResultMsg:
			if v.Type == eventType {
				out = append(out, e)
			}
		}
	}
	return out
}

type fixedGenerator struct {
	words []models.VocabWord
	err   error
}

func (g *fixedGenerator) Generate(_ context.Context, _, _, _ string) ([]models.VocabWord, error) {
	return g.words, g.err
}

var testVocab = []models.VocabWord{
	{Term: "你好", Translation: "hello"},
	{Term: "再见", Translation: "goodbye"},
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "8080",
		JWTSecret:        "test-secret",
		RatingWindow:     200,
		BotFallbackDelay: 40 * time.Millisecond,
		GracePeriod:      60 * time.Millisecond,
		VocabCacheTTL:    time.Hour,
		VocabWordCount:   10,
		Topics:           []string{"food"},
		BotNames:         []string{"Mei", "Hiro"},
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	vocab := content.NewService(nil, &fixedGenerator{words: testVocab}, zap.NewNop())
	return NewManager(testConfig(), vocab, nil, zap.NewNop())
}

// queuePlayer joins a player on a fresh fake connection.
func queuePlayer(m *Manager, id string, rating int, language, difficulty string) (*models.Player, *fakeConn) {
	conn := &fakeConn{}
	p := &models.Player{
		ID:         id,
		Username:   "user-" + id,
		Rating:     rating,
		Language:   language,
		Difficulty: difficulty,
		Conn:       conn,
		JoinedAt:   time.Now(),
	}
	m.AddToQueue(p)
	return p, conn
}

// pairUp queues two compatible players and returns their queue-time conns
// plus the created match id.
func pairUp(t *testing.T, m *Manager) (connA, connB *fakeConn, matchID string) {
	t.Helper()
	_, connA = queuePlayer(m, "alice", 1000, "chinese", "medium")
	_, connB = queuePlayer(m, "bob", 1050, "chinese", "medium")

	foundA := connA.matchFoundEvents()
	if len(foundA) != 1 {
		t.Fatalf("expected exactly one match_found for alice, got %d", len(foundA))
	}
	return connA, connB, foundA[0].MatchID
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}
