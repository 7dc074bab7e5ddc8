package matchmaking

import (
	"context"
	"math/rand"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"duel/internal/config"
	"duel/internal/content"
	"duel/internal/metrics"
	"duel/internal/models"
)

// Manager owns all matchmaking state: the waiting queue, the session table
// and both lookup indices. Nothing outside this package mutates them; every
// mutation happens under mu, and deferred callbacks (bot fallback, grace
// re-check) re-validate live state when they fire instead of trusting what
// was captured at scheduling time.
type Manager struct {
	ctx       context.Context
	cfg       *config.Config
	logger    *zap.Logger
	vocab     *content.Service
	rdb       *redis.Client // optional; session lifecycle events, nil to disable
	upgrader  websocket.Upgrader
	jwtSecret []byte

	mu          sync.Mutex
	queue       []*models.Player
	conns       map[models.Conn]*models.Player   // socket -> player
	sessions    map[string]*models.MatchSession  // matchId -> session
	playerMatch map[string]string                // playerId -> matchId
}

func NewManager(cfg *config.Config, vocab *content.Service, rdb *redis.Client, logger *zap.Logger) *Manager {
	return &Manager{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: logger,
		vocab:  vocab,
		rdb:    rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		jwtSecret: []byte(cfg.JWTSecret),

		conns:       make(map[models.Conn]*models.Player),
		sessions:    make(map[string]*models.MatchSession),
		playerMatch: make(map[string]string),
	}
}

// WaitingCount returns the number of players currently queued.
func (m *Manager) WaitingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Session returns the live session for a player, or nil.
func (m *Manager) Session(playerID string) *models.MatchSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	matchID, ok := m.playerMatch[playerID]
	if !ok {
		return nil
	}
	return m.sessions[matchID]
}

// sendTo writes one event to a socket. Write failures are dropped: a socket
// that cannot be written to is closing, and disconnect handling owns the
// cleanup.
func (m *Manager) sendTo(conn models.Conn, event interface{}) {
	if conn == nil {
		return
	}
	if err := conn.WriteJSON(event); err != nil {
		m.logger.Debug("dropped event, socket not writable", zap.Error(err))
	}
}

func (m *Manager) resolveTopic(preference string) string {
	if preference != "" {
		return preference
	}
	return m.cfg.Topics[rand.Intn(len(m.cfg.Topics))]
}

func (m *Manager) setQueueDepthLocked() {
	metrics.QueueDepth.Set(float64(len(m.queue)))
}
