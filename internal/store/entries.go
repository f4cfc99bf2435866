package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mydiary/mydiary/internal/domain"
)

// GetAllEntries returns every entry. Order is unspecified; callers sort.
func (s *Store) GetAllEntries(ctx context.Context) ([]domain.Entry, error) {
	entries := []domain.Entry{}
	for e, err := range s.entries.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// GetEntry returns the entry with id, or ErrNotFound.
func (s *Store) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return s.entries.Get(ctx, id)
}

// AddEntry stores a new entry. The id is derived from the current time and
// both timestamps are set to that instant.
func (s *Store) AddEntry(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error) {
	entryID, ms := s.clock.Next()

	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}
	entry := &domain.Entry{
		ID:        entryID,
		Title:     draft.Title,
		Content:   draft.Content,
		Mood:      draft.Mood,
		Tags:      tags,
		Date:      draft.Date,
		CreatedAt: ms,
		UpdatedAt: ms,
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("add entry: %w", err)
	}

	s.logger.Debug("entry added", "id", entryID)
	return entry, nil
}

// UpdateEntry merges patch into the entry and bumps UpdatedAt. Updating an
// absent id does nothing.
func (s *Store) UpdateEntry(ctx context.Context, id string, patch domain.EntryPatch) error {
	err := s.entries.Modify(ctx, id, func(e *domain.Entry) error {
		e.Apply(patch)
		e.UpdatedAt = max(s.now().UnixMilli(), e.CreatedAt)
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug("update of missing entry ignored", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("update entry %s: %w", id, err)
	}
	return nil
}

// DeleteEntry removes the entry. Deleting an absent id is not an error.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// CountEntries returns the number of stored entries.
func (s *Store) CountEntries(ctx context.Context) (int, error) {
	return s.entries.Count(ctx)
}

// EntriesByDate returns entries whose Date starts with datePrefix, using the
// date index. "2026-10" selects a month, "" selects everything. Results are
// ordered by date, newest first when descending is set.
func (s *Store) EntriesByDate(ctx context.Context, datePrefix string, descending bool) ([]domain.Entry, error) {
	entries := []domain.Entry{}
	for e, err := range s.entries.ScanIndex(ctx, indexDate, datePrefix, descending) {
		if err != nil {
			return nil, fmt.Errorf("scan date index: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, nil
}
