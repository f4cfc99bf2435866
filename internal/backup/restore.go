package backup

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mydiary/mydiary/internal/domain"
)

// ReadJSON parses a JSON export. Anything other than an array of entry
// objects is rejected with ErrInvalidBackup.
func ReadJSON(r io.Reader) ([]domain.Entry, error) {
	var entries []domain.Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, ErrInvalidBackup.WithCause(err)
	}
	if entries == nil {
		return nil, ErrInvalidBackup
	}
	return entries, nil
}

// Import re-inserts the entries of a JSON export into the active storage
// mode. Each entry gets a new id and new timestamps; the other fields are
// kept. Entries are inserted oldest first and the import stops at the first
// failed write, returning what was done so far.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	start := s.now()

	entries, err := ReadJSON(r)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(entries, func(a, b domain.Entry) int {
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})

	existing := map[entryKey]bool{}
	if opts.SkipExisting {
		current, err := s.entries.GetAllEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("load entries: %w", err)
		}
		for i := range current {
			existing[keyOf(&current[i])] = true
		}
	}

	result := &ImportResult{Total: len(entries)}
	for i := range entries {
		e := &entries[i]
		if opts.SkipExisting && existing[keyOf(e)] {
			result.Skipped++
			continue
		}
		if opts.DryRun {
			result.Imported++
			continue
		}

		draft := e.Draft()
		if draft.Tags == nil {
			draft.Tags = []string{}
		}
		if _, err := s.entries.AddEntry(ctx, draft); err != nil {
			s.logger.Warn("import stopped",
				"imported", result.Imported,
				"total", result.Total,
				"error", err)
			result.Duration = s.now().Sub(start)
			return result, fmt.Errorf("import entry %d: %w", i, err)
		}
		existing[keyOf(e)] = true
		result.Imported++
	}

	result.Duration = s.now().Sub(start)
	s.logger.Info("import complete",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"dry_run", opts.DryRun)

	return result, nil
}

// ImportFile imports a JSON export from path.
func (s *Service) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound.WithCause(err)
		}
		return nil, err
	}
	defer f.Close()

	return s.Import(ctx, f, opts)
}

type entryKey struct {
	title, date, content string
}

func keyOf(e *domain.Entry) entryKey {
	return entryKey{e.Title, e.Date, e.Content}
}
