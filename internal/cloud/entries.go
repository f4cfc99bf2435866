package cloud

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/id"
)

// Entry is a diary entry as the hosted backend stores it.
type Entry struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Mood      domain.Mood
	Tags      []string
	Date      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const entryColumns = `id, user_id, title, content, mood, tags, date, created_at, updated_at`

func scanEntry(row interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		e                    Entry
		tags                 []byte
		createdAt, updatedAt string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.Mood, &tags, &e.Date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &e.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// ListEntries returns a user's entries ordered by date, newest first.
func (s *Store) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+entryColumns+` FROM diary_entries
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetEntry returns one of the user's entries. Entries of other users are
// reported as absent.
func (s *Store) GetEntry(ctx context.Context, userID, entryID string) (*Entry, error) {
	if uuid.Validate(entryID) != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT `+entryColumns+` FROM diary_entries WHERE id = ? AND user_id = ?`), entryID, userID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// InsertEntry stores a new entry for userID under a fresh UUID.
func (s *Store) InsertEntry(ctx context.Context, userID string, draft domain.EntryDraft, now time.Time) (*Entry, error) {
	tags, err := encodeTags(draft.Tags)
	if err != nil {
		return nil, err
	}

	e := &Entry{
		ID:        id.UUID(),
		UserID:    userID,
		Title:     draft.Title,
		Content:   draft.Content,
		Mood:      draft.Mood,
		Tags:      draft.Tags,
		Date:      draft.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO diary_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.UserID, e.Title, e.Content, string(e.Mood), tags, e.Date,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

// UpdateEntry applies patch to one of the user's entries and returns the
// result.
func (s *Store) UpdateEntry(ctx context.Context, userID, entryID string, patch domain.EntryPatch, now time.Time) (*Entry, error) {
	if uuid.Validate(entryID) != nil {
		return nil, ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	row := tx.QueryRowContext(ctx, s.q(`
		SELECT `+entryColumns+` FROM diary_entries WHERE id = ? AND user_id = ?`), entryID, userID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	applyPatch(e, patch)
	if now.After(e.CreatedAt) {
		e.UpdatedAt = now
	} else {
		e.UpdatedAt = e.CreatedAt
	}

	tags, err := encodeTags(e.Tags)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, s.q(`
		UPDATE diary_entries
		SET title = ?, content = ?, mood = ?, tags = ?, date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`),
		e.Title, e.Content, string(e.Mood), tags, e.Date, formatTime(e.UpdatedAt), entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

// DeleteEntry removes one of the user's entries. It reports ErrNotFound when
// nothing matched.
func (s *Store) DeleteEntry(ctx context.Context, userID, entryID string) error {
	if uuid.Validate(entryID) != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM diary_entries WHERE id = ? AND user_id = ?`), entryID, userID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireRow(res)
}

// CountEntries returns how many entries a user has.
func (s *Store) CountEntries(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM diary_entries WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func applyPatch(e *Entry, p domain.EntryPatch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Mood != nil {
		e.Mood = *p.Mood
	}
	if p.Tags != nil {
		e.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
}
