package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mydiary/mydiary/internal/search"
	"github.com/mydiary/mydiary/internal/storage"
)

// SearchService answers full-text queries over the entries of the active
// backend. The index is refreshed from the router before each query, so it
// follows mode switches and edits made elsewhere.
type SearchService struct {
	index  *search.Index
	router *storage.Router
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, router *storage.Router, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		router: router,
		logger: logger,
	}
}

// Search refreshes the index and runs params against it.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if err := s.Reindex(ctx); err != nil {
		return nil, err
	}
	return s.index.Search(ctx, params)
}

// Reindex rebuilds the index from the router's entries.
func (s *SearchService) Reindex(ctx context.Context) error {
	entries, err := s.router.GetAllEntries(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	if err := s.index.Rebuild(entries); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}
	s.logger.Debug("search index refreshed", "entries", len(entries))
	return nil
}
