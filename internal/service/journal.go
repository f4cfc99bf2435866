package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/storage"
	"github.com/mydiary/mydiary/internal/validation"
)

// EntryInput is what the editor submits. Tags is the raw comma-separated
// line as typed.
type EntryInput struct {
	Title   string      `json:"title" validate:"required,max=500"`
	Content string      `json:"content" validate:"required"`
	Mood    domain.Mood `json:"mood"`
	Tags    string      `json:"tags"`
	Date    string      `json:"date"`
}

func (in EntryInput) normalized() EntryInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Date = strings.TrimSpace(in.Date)
	return in
}

// CreateResult is a saved entry plus the derived state it changed.
type CreateResult struct {
	Entry    *domain.Entry        `json:"entry"`
	Streak   int                  `json:"streak"`
	Unlocked []domain.Achievement `json:"unlocked,omitempty"`
}

// JournalService is the write path the editor uses. It validates input,
// stores through the router and keeps streaks and achievements current.
type JournalService struct {
	router       *storage.Router
	streaks      *StreakService
	achievements *AchievementService
	validator    *validation.Validator
	logger       *slog.Logger
	now          func() time.Time
}

// NewJournalService creates a new journal service.
func NewJournalService(router *storage.Router, streaks *StreakService, achievements *AchievementService, v *validation.Validator, logger *slog.Logger, opts ...Option) *JournalService {
	o := newOptions(opts)
	return &JournalService{
		router:       router,
		streaks:      streaks,
		achievements: achievements,
		validator:    v,
		logger:       logger,
		now:          o.now,
	}
}

// Create saves a new entry. Mood defaults to happy and date to now. After
// the save it updates the streak and then checks achievements; if either
// fails the entry stays saved and is returned with the error.
func (s *JournalService) Create(ctx context.Context, input EntryInput) (*CreateResult, error) {
	in := input.normalized()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	draft := domain.EntryDraft{
		Title:   in.Title,
		Content: in.Content,
		Mood:    in.Mood,
		Tags:    domain.ParseTags(in.Tags),
		Date:    in.Date,
	}
	if draft.Mood == "" {
		draft.Mood = domain.DefaultMood
	}
	if draft.Date == "" {
		draft.Date = domain.FormatDate(s.now())
	}

	entry, err := s.router.AddEntry(ctx, draft)
	if err != nil {
		return nil, err
	}
	res := &CreateResult{Entry: entry}

	s.logger.Info("entry created", "entry_id", entry.ID, "mood", entry.Mood, "tags", len(entry.Tags))

	res.Streak, err = s.streaks.UpdateStreak(ctx)
	if err != nil {
		return res, fmt.Errorf("update streak: %w", err)
	}
	res.Unlocked, err = s.achievements.CheckAchievements(ctx)
	if err != nil {
		return res, fmt.Errorf("check achievements: %w", err)
	}
	return res, nil
}

// Edit replaces the editable fields of an existing entry. An empty date or
// mood keeps the stored value. It returns the entry as stored afterwards,
// or ErrNotFound when no entry has id.
func (s *JournalService) Edit(ctx context.Context, id string, input EntryInput) (*domain.Entry, error) {
	in := input.normalized()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	tags := domain.ParseTags(in.Tags)
	patch := domain.EntryPatch{
		Title:   &in.Title,
		Content: &in.Content,
		Tags:    &tags,
	}
	if in.Mood != "" {
		patch.Mood = &in.Mood
	}
	if in.Date != "" {
		patch.Date = &in.Date
	}

	if err := s.router.UpdateEntry(ctx, id, patch); err != nil {
		return nil, err
	}
	s.logger.Info("entry updated", "entry_id", id)
	return s.router.GetEntry(ctx, id)
}

// Delete removes an entry. Deleting an unknown id is not an error.
func (s *JournalService) Delete(ctx context.Context, id string) error {
	if err := s.router.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.logger.Info("entry deleted", "entry_id", id)
	return nil
}

// Get returns one entry.
func (s *JournalService) Get(ctx context.Context, id string) (*domain.Entry, error) {
	return s.router.GetEntry(ctx, id)
}
