package matchmaking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duel/internal/models"
)

func TestTryMatch_PairsCompatiblePlayers(t *testing.T) {
	m := newTestManager(t)

	_, connA := queuePlayer(m, "alice", 1000, "chinese", "medium")
	_, connB := queuePlayer(m, "bob", 1050, "chinese", "medium")

	foundA := connA.matchFoundEvents()
	foundB := connB.matchFoundEvents()
	require.Len(t, foundA, 1)
	require.Len(t, foundB, 1)

	assert.Equal(t, foundA[0].MatchID, foundB[0].MatchID)
	assert.NotEqual(t, foundA[0].StartsFirst, foundB[0].StartsFirst)
	assert.Equal(t, foundA[0].Topic, foundB[0].Topic)
	assert.Equal(t, foundA[0].Vocabulary, foundB[0].Vocabulary)
	assert.Equal(t, foundA[0].Language, foundB[0].Language)
	assert.Equal(t, foundA[0].Difficulty, foundB[0].Difficulty)
	assert.False(t, foundA[0].IsAI)
	assert.False(t, foundB[0].IsAI)

	assert.Equal(t, "user-bob", foundA[0].Opponent.Username)
	assert.Equal(t, "user-alice", foundB[0].Opponent.Username)
	assert.Equal(t, 0, m.WaitingCount())
}

func TestTryMatch_RatingWindowExcludesFarCandidates(t *testing.T) {
	m := newTestManager(t)

	_, connA := queuePlayer(m, "alice", 1000, "chinese", "medium")
	_, connB := queuePlayer(m, "bob", 1300, "chinese", "medium")

	assert.Empty(t, connA.matchFoundEvents())
	assert.Empty(t, connB.matchFoundEvents())
	assert.Equal(t, 2, m.WaitingCount())
}

func TestTryMatch_NearestRatingWins(t *testing.T) {
	m := newTestManager(t)

	// Pairwise diffs among the waiting three all exceed the window, so they
	// stay queued until the fourth player arrives.
	queuePlayer(m, "out-of-window", 700, "chinese", "medium")
	_, connNearest := queuePlayer(m, "nearest", 950, "chinese", "medium")
	_, connFarHigh := queuePlayer(m, "in-window-far", 1190, "chinese", "medium")
	require.Equal(t, 3, m.WaitingCount())

	_, connNew := queuePlayer(m, "new", 1000, "chinese", "medium")

	foundNew := connNew.matchFoundEvents()
	require.Len(t, foundNew, 1)
	assert.Equal(t, "user-nearest", foundNew[0].Opponent.Username)
	require.Len(t, connNearest.matchFoundEvents(), 1)
	assert.Empty(t, connFarHigh.matchFoundEvents())
}

func TestTryMatch_LanguageAndDifficultyMustMatchExactly(t *testing.T) {
	m := newTestManager(t)

	queuePlayer(m, "spanish", 1000, "spanish", "medium")
	queuePlayer(m, "hard", 1000, "chinese", "hard")
	_, connNew := queuePlayer(m, "new", 1000, "chinese", "medium")

	assert.Empty(t, connNew.matchFoundEvents())
	assert.Equal(t, 3, m.WaitingCount())
}

func TestBotFallback_FiresAfterDelay(t *testing.T) {
	m := newTestManager(t)

	p, conn := queuePlayer(m, "solo", 1000, "chinese", "medium")

	// Not before the delay.
	time.Sleep(m.cfg.BotFallbackDelay / 4)
	assert.Empty(t, conn.matchFoundEvents())

	waitFor(t, time.Second, func() bool {
		return len(conn.matchFoundEvents()) == 1
	}, "expected bot match_found after fallback delay")

	found := conn.matchFoundEvents()[0]
	assert.True(t, found.IsAI)
	assert.Contains(t, m.cfg.BotNames, found.Opponent.Username)
	assert.GreaterOrEqual(t, found.Opponent.Rating, 1000)
	assert.Less(t, found.Opponent.Rating, 1200)
	assert.Equal(t, p.Language, found.Language)
	assert.Equal(t, testVocab, found.Vocabulary)
	assert.Empty(t, found.Token)
	assert.Equal(t, 0, m.WaitingCount())

	// No server-side session exists for a bot match.
	assert.Nil(t, m.Session("solo"))
}

func TestBotFallback_SkippedWhenHumanMatched(t *testing.T) {
	m := newTestManager(t)

	_, connA := queuePlayer(m, "alice", 1000, "chinese", "medium")
	queuePlayer(m, "bob", 1050, "chinese", "medium")

	// Let the fallback timer scheduled for alice fire; it must re-check and
	// find her already matched.
	time.Sleep(m.cfg.BotFallbackDelay * 2)

	found := connA.matchFoundEvents()
	require.Len(t, found, 1)
	assert.False(t, found[0].IsAI)
}

func TestBotFallback_TopicPreferenceRespected(t *testing.T) {
	m := newTestManager(t)

	conn := &fakeConn{}
	m.AddToQueue(&models.Player{
		ID: "solo", Username: "user-solo", Rating: 1000,
		Language: "chinese", Difficulty: "medium", Topic: "astronomy",
		Conn: conn, JoinedAt: time.Now(),
	})

	waitFor(t, time.Second, func() bool {
		return len(conn.matchFoundEvents()) == 1
	}, "expected bot match_found")

	assert.Equal(t, "astronomy", conn.matchFoundEvents()[0].Topic)
}

func TestRemoveFromQueue_Idempotent(t *testing.T) {
	m := newTestManager(t)

	_, connA := queuePlayer(m, "alice", 1000, "chinese", "medium")
	_, connB := queuePlayer(m, "bob", 1500, "spanish", "easy")

	m.RemoveFromQueue(connA)
	assert.Equal(t, 1, m.WaitingCount())

	// Removing again, and removing a never-queued socket, are no-ops.
	m.RemoveFromQueue(connA)
	m.RemoveFromQueue(&fakeConn{})
	assert.Equal(t, 1, m.WaitingCount())

	// Bob is unaffected.
	m.RemoveFromQueue(connB)
	assert.Equal(t, 0, m.WaitingCount())
}

func TestRemoveFromQueue_CancelsBotFallbackEffect(t *testing.T) {
	m := newTestManager(t)

	_, conn := queuePlayer(m, "solo", 1000, "chinese", "medium")
	m.RemoveFromQueue(conn)

	time.Sleep(m.cfg.BotFallbackDelay * 2)
	assert.Empty(t, conn.matchFoundEvents())
}

func TestBotFallback_StaleTimerIgnoresRejoinedEntry(t *testing.T) {
	m := newTestManager(t)

	_, connA := queuePlayer(m, "alice", 1000, "chinese", "medium")
	queuePlayer(m, "bob", 1050, "chinese", "medium")
	require.Len(t, connA.matchFoundEvents(), 1)
	m.EndMatch(connA.matchFoundEvents()[0].MatchID)

	// Rejoin halfway through the first join's fallback delay. The timer from
	// the first stint fires against a fresh queue entry and must not hand it
	// a bot before the entry's own delay has run.
	time.Sleep(m.cfg.BotFallbackDelay / 2)
	_, conn2 := queuePlayer(m, "alice", 1000, "chinese", "medium")

	time.Sleep(m.cfg.BotFallbackDelay * 3 / 4)
	assert.Empty(t, conn2.matchFoundEvents())

	waitFor(t, time.Second, func() bool {
		return len(conn2.matchFoundEvents()) == 1
	}, "expected bot match_found after the rejoined entry's own delay")
	assert.True(t, conn2.matchFoundEvents()[0].IsAI)
}

func TestAddToQueue_RejoinReplacesEntry(t *testing.T) {
	m := newTestManager(t)

	queuePlayer(m, "alice", 1000, "chinese", "medium")
	_, conn2 := queuePlayer(m, "alice", 1010, "chinese", "medium")

	assert.Equal(t, 1, m.WaitingCount())

	// The replacement must not self-match.
	assert.Empty(t, conn2.matchFoundEvents())
}

func TestAddToQueue_RefusedWhileInMatch(t *testing.T) {
	m := newTestManager(t)
	pairUp(t, m)

	_, conn := queuePlayer(m, "alice", 1000, "chinese", "medium")
	assert.Equal(t, 0, m.WaitingCount())
	assert.Empty(t, conn.matchFoundEvents())
}

func TestDisconnect_WhileQueuedRemovesFromQueue(t *testing.T) {
	m := newTestManager(t)

	_, conn := queuePlayer(m, "alice", 1000, "chinese", "medium")
	m.HandleDisconnect(conn)

	assert.Equal(t, 0, m.WaitingCount())

	// The scheduled bot fallback becomes a no-op.
	time.Sleep(m.cfg.BotFallbackDelay * 2)
	assert.Empty(t, conn.matchFoundEvents())
}
