// Package store is the on-device Local Store: entries and settings kept in
// an embedded Badger database.
//
// A Store is opened once at startup and handed to whoever needs it; there is
// no package-level handle. All methods are safe for concurrent use, although
// the diary itself only ever has a single writer.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/id"
	"github.com/mydiary/mydiary/internal/logger"
)

// SchemaVersion is the layout version this build writes. Upgrading from an
// older version only adds what is missing; records are never rewritten.
const SchemaVersion = 1

const indexDate = "date"

var schemaVersionKey = []byte(prefixMeta + "schema_version")

// Store wraps a Badger database holding the entries and settings containers.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
	clock  *id.EntryClock

	entries *Entity[domain.Entry]
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (creating if needed) the database in dir.
func Open(dir string, log *slog.Logger, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions(dir)
	bopts.Logger = nil
	bopts.SyncWrites = true
	bopts.CompactL0OnClose = true
	return open(bopts, dir, log, opts)
}

// OpenInMemory opens a throwaway store. Used by tests and dry runs.
func OpenInMemory(log *slog.Logger, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions("").WithInMemory(true)
	bopts.Logger = nil
	return open(bopts, ":memory:", log, opts)
}

func open(bopts badger.Options, where string, log *slog.Logger, opts []Option) (*Store, error) {
	if log == nil {
		log = logger.Discard()
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	s := &Store{db: db, logger: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.clock = id.NewEntryClock(s.now)
	s.entries = NewEntity(s, prefixEntry, func(e *domain.Entry) string { return e.ID }).
		WithIndex(indexDate, func(e *domain.Entry) []string {
			return []string{e.Date}
		})

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	ids, err := s.entries.IDs(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scan entry ids: %w", err)
	}
	for _, entryID := range ids {
		s.clock.Observe(entryID)
	}

	log.Info("local store opened", "path", where, "entries", len(ids))
	return s, nil
}

// initSchema writes the schema version on first open and refuses databases
// written by a newer build. Containers are key prefixes, so there is nothing
// else to create.
func (s *Store) initSchema() error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(schemaVersionKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.Info("initializing local schema", "version", SchemaVersion)
			return txn.Set(schemaVersionKey, []byte(fmt.Sprint(SchemaVersion)))
		}
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}

		var current int
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &current)
		}); err != nil {
			return fmt.Errorf("decode schema version: %w", err)
		}

		switch {
		case current > SchemaVersion:
			return fmt.Errorf("found version %d, supported %d: %w", current, SchemaVersion, ErrSchemaTooNew)
		case current < SchemaVersion:
			s.logger.Info("upgrading local schema", "from", current, "to", SchemaVersion)
			return txn.Set(schemaVersionKey, []byte(fmt.Sprint(SchemaVersion)))
		}
		return nil
	})
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	s.logger.Info("closing local store")
	return s.db.Close()
}

// Ping checks that the database accepts reads.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}
