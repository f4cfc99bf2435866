package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/store"
)

// StreakService maintains the consecutive-day writing streak. The counters
// live in local settings regardless of the storage mode.
type StreakService struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewStreakService creates a new streak service.
func NewStreakService(store *store.Store, logger *slog.Logger, opts ...Option) *StreakService {
	o := newOptions(opts)
	return &StreakService{
		store:  store,
		logger: logger,
		now:    o.now,
	}
}

// Streak returns the persisted streak without changing it.
func (s *StreakService) Streak(ctx context.Context) (domain.StreakState, error) {
	var state domain.StreakState
	if _, err := s.store.GetSetting(ctx, domain.SettingStreakCount, &state.Count); err != nil {
		return state, fmt.Errorf("read streak count: %w", err)
	}
	if _, err := s.store.GetSetting(ctx, domain.SettingLastEntryDate, &state.LastEntryDate); err != nil {
		return state, fmt.Errorf("read last entry date: %w", err)
	}
	return state, nil
}

// UpdateStreak records that an entry was saved now. A second save on the
// same day changes nothing; a save on the day after the last one extends
// the streak; anything else starts over at 1. It returns the new count.
func (s *StreakService) UpdateStreak(ctx context.Context) (int, error) {
	state, err := s.Streak(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	today := domain.DayKey(now)
	if state.LastEntryDate == today && state.Count > 0 {
		return state.Count, nil
	}

	count := 1
	if state.LastEntryDate == domain.PreviousDayKey(now) {
		count = state.Count + 1
	}

	if err := s.store.SetSetting(ctx, domain.SettingStreakCount, count); err != nil {
		return 0, fmt.Errorf("save streak count: %w", err)
	}
	if err := s.store.SetSetting(ctx, domain.SettingLastEntryDate, today); err != nil {
		return 0, fmt.Errorf("save last entry date: %w", err)
	}

	s.logger.Debug("streak updated", "days", count, "previous", state.Count)
	return count, nil
}
