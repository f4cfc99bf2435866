// Package storage routes entry operations to the local store or the hosted
// backend according to the persisted storage mode.
package storage

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/store"
)

var (
	// ErrAuthRequired is returned by cloud writes without a session.
	ErrAuthRequired = domainerrors.AuthRequired("sign in to use cloud storage")
	// ErrNotFound is returned by Get for unknown ids.
	ErrNotFound = domainerrors.NotFound("entry not found")
)

// EntryRepository is one place entries can live.
type EntryRepository interface {
	List(ctx context.Context) ([]domain.Entry, error)
	// ListByDate returns entries whose Date starts with datePrefix, latest
	// date first.
	ListByDate(ctx context.Context, datePrefix string) ([]domain.Entry, error)
	Get(ctx context.Context, id string) (*domain.Entry, error)
	Add(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error)
	// Update and Delete treat unknown ids as no-ops.
	Update(ctx context.Context, id string, patch domain.EntryPatch) error
	Delete(ctx context.Context, id string) error
}

// LocalStore is the entry half of the on-device store.
type LocalStore interface {
	GetAllEntries(ctx context.Context) ([]domain.Entry, error)
	EntriesByDate(ctx context.Context, datePrefix string, descending bool) ([]domain.Entry, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	AddEntry(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, id string, patch domain.EntryPatch) error
	DeleteEntry(ctx context.Context, id string) error
}

// LocalBackend serves entries from the on-device store.
type LocalBackend struct {
	store LocalStore
}

// NewLocalBackend wraps the local store.
func NewLocalBackend(s LocalStore) *LocalBackend {
	return &LocalBackend{store: s}
}

// List implements EntryRepository.
func (b *LocalBackend) List(ctx context.Context) ([]domain.Entry, error) {
	return b.store.GetAllEntries(ctx)
}

// ListByDate implements EntryRepository using the date index.
func (b *LocalBackend) ListByDate(ctx context.Context, datePrefix string) ([]domain.Entry, error) {
	return b.store.EntriesByDate(ctx, datePrefix, true)
}

// Get implements EntryRepository.
func (b *LocalBackend) Get(ctx context.Context, id string) (*domain.Entry, error) {
	e, err := b.store.GetEntry(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return e, err
}

// Add implements EntryRepository.
func (b *LocalBackend) Add(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error) {
	return b.store.AddEntry(ctx, draft)
}

// Update implements EntryRepository.
func (b *LocalBackend) Update(ctx context.Context, id string, patch domain.EntryPatch) error {
	return b.store.UpdateEntry(ctx, id, patch)
}

// Delete implements EntryRepository.
func (b *LocalBackend) Delete(ctx context.Context, id string) error {
	return b.store.DeleteEntry(ctx, id)
}

// RemoteClient is the part of the hosted API client the router uses.
type RemoteClient interface {
	Session(ctx context.Context) (*domain.Session, error)
	ListEntries(ctx context.Context) ([]domain.Entry, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	InsertEntry(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, id string, patch domain.EntryPatch) error
	DeleteEntry(ctx context.Context, id string) error
}

// RemoteBackend serves entries from the hosted backend. Without a session,
// reads come back empty and writes fail with ErrAuthRequired; in strict
// mode reads fail too.
type RemoteBackend struct {
	client RemoteClient
	strict bool
}

// NewRemoteBackend wraps the hosted API client.
func NewRemoteBackend(c RemoteClient, strict bool) *RemoteBackend {
	return &RemoteBackend{client: c, strict: strict}
}

// List implements EntryRepository.
func (b *RemoteBackend) List(ctx context.Context) ([]domain.Entry, error) {
	entries, err := b.client.ListEntries(ctx)
	if isAuthRequired(err) {
		if b.strict {
			return nil, ErrAuthRequired.WithCause(err)
		}
		return []domain.Entry{}, nil
	}
	return entries, err
}

// ListByDate implements EntryRepository by filtering List.
func (b *RemoteBackend) ListByDate(ctx context.Context, datePrefix string) ([]domain.Entry, error) {
	entries, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Date, datePrefix) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Entry) int { return cmp.Compare(b.Date, a.Date) })
	return out, nil
}

// Get implements EntryRepository.
func (b *RemoteBackend) Get(ctx context.Context, id string) (*domain.Entry, error) {
	e, err := b.client.GetEntry(ctx, id)
	switch {
	case isAuthRequired(err):
		if b.strict {
			return nil, ErrAuthRequired.WithCause(err)
		}
		return nil, ErrNotFound
	case errors.Is(err, domainerrors.ErrNotFound):
		return nil, ErrNotFound
	}
	return e, err
}

// Add implements EntryRepository.
func (b *RemoteBackend) Add(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error) {
	e, err := b.client.InsertEntry(ctx, draft)
	if isAuthRequired(err) {
		return nil, ErrAuthRequired.WithCause(err)
	}
	return e, err
}

// Update implements EntryRepository.
func (b *RemoteBackend) Update(ctx context.Context, id string, patch domain.EntryPatch) error {
	err := b.client.UpdateEntry(ctx, id, patch)
	if isAuthRequired(err) {
		return ErrAuthRequired.WithCause(err)
	}
	return err
}

// Delete implements EntryRepository.
func (b *RemoteBackend) Delete(ctx context.Context, id string) error {
	err := b.client.DeleteEntry(ctx, id)
	if isAuthRequired(err) {
		return ErrAuthRequired.WithCause(err)
	}
	return err
}

// offlineClient stands in when no hosted backend is configured: there is
// never a session, so cloud mode behaves as signed out.
type offlineClient struct{}

func (offlineClient) Session(context.Context) (*domain.Session, error) { return nil, nil }

func (offlineClient) ListEntries(context.Context) ([]domain.Entry, error) {
	return nil, ErrAuthRequired
}

func (offlineClient) GetEntry(context.Context, string) (*domain.Entry, error) {
	return nil, ErrAuthRequired
}

func (offlineClient) InsertEntry(context.Context, domain.EntryDraft) (*domain.Entry, error) {
	return nil, ErrAuthRequired
}

func (offlineClient) UpdateEntry(context.Context, string, domain.EntryPatch) error {
	return ErrAuthRequired
}

func (offlineClient) DeleteEntry(context.Context, string) error {
	return ErrAuthRequired
}

func isAuthRequired(err error) bool {
	return err != nil && errors.Is(err, domainerrors.ErrAuthRequired)
}
