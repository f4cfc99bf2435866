package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/logger"
	"github.com/mydiary/mydiary/internal/storage"
	"github.com/mydiary/mydiary/internal/store"
	"github.com/mydiary/mydiary/internal/validation"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) AddDays(n int) {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, n)
	c.mu.Unlock()
}

type recordingNotifier struct {
	got []domain.AchievementID
}

func (n *recordingNotifier) AchievementUnlocked(_ context.Context, a domain.Achievement) {
	n.got = append(n.got, a.ID)
}

type harness struct {
	store        *store.Store
	router       *storage.Router
	clock        *fakeClock
	notifier     *recordingNotifier
	streaks      *StreakService
	achievements *AchievementService
	journal      *JournalService
}

// noon on an ordinary day, local time
var baseTime = time.Date(2026, 10, 15, 12, 0, 0, 0, time.Local)

func setupHarness(t *testing.T) *harness {
	t.Helper()

	clk := &fakeClock{now: baseTime}
	st, err := store.OpenInMemory(nil, store.WithClock(clk.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := logger.Discard()
	router := storage.NewRouter(st, st, nil, log)
	notifier := &recordingNotifier{}
	streaks := NewStreakService(st, log, WithClock(clk.Now))
	achievements := NewAchievementService(st, router, streaks, notifier, log)
	journal := NewJournalService(router, streaks, achievements, validation.New(), log, WithClock(clk.Now))

	return &harness{
		store:        st,
		router:       router,
		clock:        clk,
		notifier:     notifier,
		streaks:      streaks,
		achievements: achievements,
		journal:      journal,
	}
}

func (h *harness) addEntries(t *testing.T, n int, mood domain.Mood) {
	t.Helper()
	for range n {
		_, err := h.router.AddEntry(context.Background(), domain.EntryDraft{Title: "t", Content: "c", Mood: mood})
		require.NoError(t, err)
	}
}
