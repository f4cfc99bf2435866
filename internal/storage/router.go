package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/logger"
)

// Settings is the settings half of the local store.
type Settings interface {
	GetSetting(ctx context.Context, key string, dest any) (bool, error)
	SetSetting(ctx context.Context, key string, value any) error
}

// Router sends each entry operation to the backend selected by the
// storageMode setting. The mode is read on every call, so a change made by
// SetMode or MigrateToCloud applies to the next operation.
type Router struct {
	settings Settings
	local    *LocalBackend
	remote   *RemoteBackend
	client   RemoteClient
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*routerConfig)

type routerConfig struct {
	strict bool
}

// WithStrict makes cloud reads without a session fail with ErrAuthRequired
// instead of returning nothing.
func WithStrict(strict bool) Option {
	return func(c *routerConfig) { c.strict = strict }
}

// NewRouter creates a router over the local store and the hosted API client.
// A nil client means no hosted backend is configured; cloud mode then acts
// as if signed out.
func NewRouter(local LocalStore, settings Settings, client RemoteClient, log *slog.Logger, opts ...Option) *Router {
	if log == nil {
		log = logger.Discard()
	}
	if client == nil {
		client = offlineClient{}
	}
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Router{
		settings: settings,
		local:    NewLocalBackend(local),
		remote:   NewRemoteBackend(client, cfg.strict),
		client:   client,
		logger:   log,
	}
}

// Mode returns the persisted storage mode. Anything other than "cloud",
// including no value at all, means local.
func (r *Router) Mode(ctx context.Context) (domain.StorageMode, error) {
	var raw string
	ok, err := r.settings.GetSetting(ctx, domain.SettingStorageMode, &raw)
	if err != nil {
		return "", fmt.Errorf("read storage mode: %w", err)
	}
	if !ok {
		return domain.DefaultStorageMode, nil
	}
	if domain.StorageMode(raw) == domain.StorageCloud {
		return domain.StorageCloud, nil
	}
	return domain.StorageLocal, nil
}

// IsModeChosen reports whether a storage mode has ever been persisted.
func (r *Router) IsModeChosen(ctx context.Context) (bool, error) {
	var raw string
	ok, err := r.settings.GetSetting(ctx, domain.SettingStorageMode, &raw)
	if err != nil {
		return false, fmt.Errorf("read storage mode: %w", err)
	}
	return ok, nil
}

// SetMode persists the storage mode.
func (r *Router) SetMode(ctx context.Context, mode domain.StorageMode) error {
	if _, err := domain.ParseStorageMode(string(mode)); err != nil {
		return domainerrors.Validation(err.Error())
	}
	if err := r.settings.SetSetting(ctx, domain.SettingStorageMode, string(mode)); err != nil {
		return fmt.Errorf("save storage mode: %w", err)
	}
	r.logger.Info("storage mode set", "mode", mode)
	return nil
}

// Repository returns the backend for the current mode.
func (r *Router) Repository(ctx context.Context) (EntryRepository, error) {
	mode, err := r.Mode(ctx)
	if err != nil {
		return nil, err
	}
	if mode == domain.StorageCloud {
		return r.remote, nil
	}
	return r.local, nil
}

// GetAllEntries lists every entry in the current backend. Order is
// backend-defined: date descending in cloud mode, unspecified locally.
func (r *Router) GetAllEntries(ctx context.Context) ([]domain.Entry, error) {
	repo, err := r.Repository(ctx)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

// EntriesByDate lists entries of the current backend whose Date starts with
// datePrefix ("2026", "2026-10", "2026-10-15"), latest date first.
func (r *Router) EntriesByDate(ctx context.Context, datePrefix string) ([]domain.Entry, error) {
	repo, err := r.Repository(ctx)
	if err != nil {
		return nil, err
	}
	return repo.ListByDate(ctx, datePrefix)
}

// GetEntry returns one entry or ErrNotFound.
func (r *Router) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	repo, err := r.Repository(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// AddEntry creates an entry in the current backend.
func (r *Router) AddEntry(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error) {
	repo, err := r.Repository(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Add(ctx, draft)
}

// UpdateEntry patches an entry. Unknown ids are ignored.
func (r *Router) UpdateEntry(ctx context.Context, id string, patch domain.EntryPatch) error {
	repo, err := r.Repository(ctx)
	if err != nil {
		return err
	}
	return repo.Update(ctx, id, patch)
}

// DeleteEntry removes an entry. Unknown ids are ignored.
func (r *Router) DeleteEntry(ctx context.Context, id string) error {
	repo, err := r.Repository(ctx)
	if err != nil {
		return err
	}
	return repo.Delete(ctx, id)
}
