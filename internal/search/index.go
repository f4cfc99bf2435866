package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/logger"
)

// Index wraps an in-memory Bleve index of entries. Entries can live in the
// cloud, so the index is built from whatever the active backend returns
// rather than persisted next to the local store.
//
// All methods are safe for concurrent use.
type Index struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex // guards index replacement during Rebuild
}

// NewIndex creates an empty index. A nil logger discards output.
func NewIndex(log *slog.Logger) (*Index, error) {
	if log == nil {
		log = logger.Discard()
	}
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx, logger: log}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEntry adds or replaces one entry.
func (s *Index) IndexEntry(e *domain.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(e.ID, EntryToDocument(e).ToMap())
}

// IndexEntries adds or replaces entries in batches.
func (s *Index) IndexEntries(entries []domain.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(entries)
}

func (s *Index) indexLocked(entries []domain.Entry) error {
	const batchSize = 500

	for i := 0; i < len(entries); i += batchSize {
		end := min(i+batchSize, len(entries))

		batch := s.index.NewBatch()
		for j := i; j < end; j++ {
			if err := batch.Index(entries[j].ID, EntryToDocument(&entries[j]).ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", entries[j].ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteEntry removes an entry from the index.
func (s *Index) DeleteEntry(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed entries.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the whole index with entries.
func (s *Index) Rebuild(entries []domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	old := s.index
	s.index = fresh
	if err := s.indexLocked(entries); err != nil {
		s.index = old
		_ = fresh.Close()
		return err
	}
	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close replaced search index", "error", err)
	}

	s.logger.Debug("rebuilt search index", "entries", len(entries))
	return nil
}
