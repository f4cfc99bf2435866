package storage

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/mydiary/mydiary/internal/domain"
)

// MigrateOptions tunes MigrateToCloud.
type MigrateOptions struct {
	// SkipExisting leaves out local entries whose title, date and content
	// already match an entry in the cloud, so a retried migration does not
	// duplicate what the first attempt copied.
	SkipExisting bool
}

// MigrationResult counts what a migration did.
type MigrationResult struct {
	Total    int `json:"total"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
}

type naturalKey struct {
	title, date, content string
}

func keyOf(e *domain.Entry) naturalKey {
	return naturalKey{title: e.Title, date: e.Date, content: e.Content}
}

// MigrateToCloud copies every local entry to the hosted backend, oldest
// first, and then switches the storage mode to cloud. The cloud assigns new
// ids and timestamps. Local entries are left in place.
//
// The first failed insert stops the migration; the mode stays unchanged and
// the result reports how far it got.
func (r *Router) MigrateToCloud(ctx context.Context, opts MigrateOptions) (MigrationResult, error) {
	var res MigrationResult

	sess, err := r.client.Session(ctx)
	if err != nil {
		return res, fmt.Errorf("check session: %w", err)
	}
	if sess == nil {
		return res, ErrAuthRequired
	}

	entries, err := r.local.List(ctx)
	if err != nil {
		return res, fmt.Errorf("read local entries: %w", err)
	}
	slices.SortStableFunc(entries, func(a, b domain.Entry) int {
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})
	res.Total = len(entries)

	existing := map[naturalKey]struct{}{}
	if opts.SkipExisting {
		remote, err := r.client.ListEntries(ctx)
		if err != nil {
			return res, fmt.Errorf("read cloud entries: %w", err)
		}
		for i := range remote {
			existing[keyOf(&remote[i])] = struct{}{}
		}
	}

	for i := range entries {
		e := &entries[i]
		if _, dup := existing[keyOf(e)]; dup {
			res.Skipped++
			continue
		}
		if _, err := r.client.InsertEntry(ctx, e.Draft()); err != nil {
			r.logger.Warn("migration stopped",
				"entry_id", e.ID,
				"migrated", res.Migrated,
				"total", res.Total,
				"error", err)
			return res, fmt.Errorf("migrate entry %s: %w", e.ID, err)
		}
		res.Migrated++
	}

	if err := r.SetMode(ctx, domain.StorageCloud); err != nil {
		return res, err
	}

	r.logger.Info("migrated entries to cloud",
		"migrated", res.Migrated,
		"skipped", res.Skipped,
		"total", res.Total)
	return res, nil
}
