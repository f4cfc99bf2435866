package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/storage"
	"github.com/mydiary/mydiary/internal/store"
)

// Notifier is told about every newly unlocked achievement, once.
type Notifier interface {
	AchievementUnlocked(ctx context.Context, a domain.Achievement)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, a domain.Achievement)

// AchievementUnlocked implements Notifier.
func (f NotifierFunc) AchievementUnlocked(ctx context.Context, a domain.Achievement) {
	f(ctx, a)
}

// LogNotifier reports unlocks to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// AchievementUnlocked implements Notifier.
func (n LogNotifier) AchievementUnlocked(_ context.Context, a domain.Achievement) {
	n.Logger.Info("achievement unlocked",
		"id", a.ID,
		"title", a.Title,
		"milestone", a.Milestone,
	)
}

// AchievementService evaluates the achievement catalog against the entries
// in the active backend. The unlocked set lives in local settings and only
// ever grows.
type AchievementService struct {
	store    *store.Store
	entries  *storage.Router
	streaks  *StreakService
	notifier Notifier
	logger   *slog.Logger
}

// NewAchievementService creates a new achievement service. A nil notifier
// logs unlocks.
func NewAchievementService(store *store.Store, entries *storage.Router, streaks *StreakService, notifier Notifier, logger *slog.Logger) *AchievementService {
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &AchievementService{
		store:    store,
		entries:  entries,
		streaks:  streaks,
		notifier: notifier,
		logger:   logger,
	}
}

// CheckAchievements unlocks every catalog rule the current state satisfies
// and returns the ones that were not unlocked before. Running it again with
// nothing new returns nothing.
func (s *AchievementService) CheckAchievements(ctx context.Context) ([]domain.Achievement, error) {
	snap, unlocked, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var fresh []domain.Achievement
	for _, a := range domain.Catalog {
		if slices.Contains(unlocked, a.ID) || !a.Satisfied(snap) {
			continue
		}
		fresh = append(fresh, a)
		unlocked = append(unlocked, a.ID)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	if err := s.store.SetSetting(ctx, domain.SettingAchievements, unlocked); err != nil {
		return nil, fmt.Errorf("save achievements: %w", err)
	}

	for _, a := range fresh {
		s.notifier.AchievementUnlocked(ctx, a)
	}
	s.logger.Debug("achievements checked", "unlocked", len(fresh), "total_unlocked", len(unlocked))
	return fresh, nil
}

// GetAchievements returns the catalog with unlock state and progress. It
// never changes what is persisted.
func (s *AchievementService) GetAchievements(ctx context.Context) ([]domain.AchievementProgress, error) {
	snap, unlocked, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AchievementProgress, 0, len(domain.Catalog))
	for _, a := range domain.Catalog {
		out = append(out, domain.AchievementProgress{
			Achievement: a,
			Unlocked:    slices.Contains(unlocked, a.ID),
			Progress:    a.Measure(snap),
		})
	}
	return out, nil
}

// Unlocked returns the persisted unlocked ids in unlock order.
func (s *AchievementService) Unlocked(ctx context.Context) ([]domain.AchievementID, error) {
	ids := []domain.AchievementID{}
	if _, err := s.store.GetSetting(ctx, domain.SettingAchievements, &ids); err != nil {
		return nil, fmt.Errorf("read achievements: %w", err)
	}
	return ids, nil
}

func (s *AchievementService) load(ctx context.Context) (domain.ProgressSnapshot, []domain.AchievementID, error) {
	entries, err := s.entries.GetAllEntries(ctx)
	if err != nil {
		return domain.ProgressSnapshot{}, nil, fmt.Errorf("list entries: %w", err)
	}
	streak, err := s.streaks.Streak(ctx)
	if err != nil {
		return domain.ProgressSnapshot{}, nil, err
	}
	unlocked, err := s.Unlocked(ctx)
	if err != nil {
		return domain.ProgressSnapshot{}, nil, err
	}
	return domain.Snapshot(entries, streak.Count), unlocked, nil
}
