package providers

import (
	"github.com/samber/do/v2"

	"github.com/mydiary/mydiary/internal/backup"
	"github.com/mydiary/mydiary/internal/config"
	"github.com/mydiary/mydiary/internal/logger"
	"github.com/mydiary/mydiary/internal/remote"
	"github.com/mydiary/mydiary/internal/search"
	"github.com/mydiary/mydiary/internal/service"
	"github.com/mydiary/mydiary/internal/storage"
	"github.com/mydiary/mydiary/internal/validation"
)

// RemoteHandle holds the hosted API client. Client is nil when no backend
// URL is configured.
type RemoteHandle struct {
	Client *remote.Client
}

// ProvideRemote provides the hosted API client, sharing the local store for
// session persistence.
func ProvideRemote(i do.Injector) (*RemoteHandle, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Offline() {
		log.Debug("No backend configured, cloud features disabled")
		return &RemoteHandle{}, nil
	}

	client, err := remote.New(remote.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, remote.NewSettingsSessionStore(storeHandle.Store), log.Logger)
	if err != nil {
		return nil, err
	}

	return &RemoteHandle{Client: client}, nil
}

// ProvideRouter provides the storage router.
func ProvideRouter(i do.Injector) (*storage.Router, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	remoteHandle := do.MustInvoke[*RemoteHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	var client storage.RemoteClient
	if remoteHandle.Client != nil {
		client = remoteHandle.Client
	}

	return storage.NewRouter(storeHandle.Store, storeHandle.Store, client, log.Logger,
		storage.WithStrict(cfg.Backend.Strict),
	), nil
}

// ProvideStreakService provides the writing streak service.
func ProvideStreakService(i do.Injector) (*service.StreakService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStreakService(storeHandle.Store, log.Logger), nil
}

// ProvideAchievementService provides the achievement service. Unlocks go to
// the service.Notifier registered in the container.
func ProvideAchievementService(i do.Injector) (*service.AchievementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	router := do.MustInvoke[*storage.Router](i)
	streaks := do.MustInvoke[*service.StreakService](i)
	log := do.MustInvoke[*logger.Logger](i)

	notifier, _ := do.Invoke[service.Notifier](i)

	return service.NewAchievementService(storeHandle.Store, router, streaks, notifier, log.Logger), nil
}

// ProvideJournalService provides entry create/edit/delete and the dashboard.
func ProvideJournalService(i do.Injector) (*service.JournalService, error) {
	router := do.MustInvoke[*storage.Router](i)
	streaks := do.MustInvoke[*service.StreakService](i)
	achievements := do.MustInvoke[*service.AchievementService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewJournalService(router, streaks, achievements, v, log.Logger), nil
}

// ProvideLockGate provides the session and lock gate.
func ProvideLockGate(i do.Injector) (*service.LockGate, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	router := do.MustInvoke[*storage.Router](i)
	remoteHandle := do.MustInvoke[*RemoteHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLockGate(storeHandle.Store, router, remoteHandle.Client, log.Logger), nil
}

// ProvidePreferencesService provides theme and ambient sound preferences.
func ProvidePreferencesService(i do.Injector) (*service.PreferencesService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPreferencesService(storeHandle.Store, v, log.Logger), nil
}

// ProvideQuoteService provides the quote of the day.
func ProvideQuoteService(i do.Injector) (*service.QuoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewQuoteService(storeHandle.Store, log.Logger), nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory Bleve index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(log.Logger)
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides full-text search over the active backend.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	router := do.MustInvoke[*storage.Router](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.Index, router, log.Logger), nil
}

// ProvideBackupService provides export and import.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	router := do.MustInvoke[*storage.Router](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewService(router, cfg.Storage.BackupDir, log.Logger), nil
}
