package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mydiary/mydiary/internal/cloud"
	"github.com/mydiary/mydiary/internal/config"
	"github.com/mydiary/mydiary/internal/logger"
	"github.com/mydiary/mydiary/internal/store"
)

// CloudStoreHandle wraps the hosted SQL store with shutdown capability.
type CloudStoreHandle struct {
	*cloud.Store
}

// Shutdown implements do.Shutdownable.
func (h *CloudStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideCloudStore opens the hosted database and applies migrations.
func ProvideCloudStore(i do.Injector) (*CloudStoreHandle, error) {
	cfg := do.MustInvoke[*config.ServerConfig](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	db, err := cloud.Open(ctx, cloud.Config{
		Dialect: cloud.Dialect(cfg.Database.Dialect),
		DSN:     cfg.Database.DSN,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "dialect", db.Dialect())

	return &CloudStoreHandle{Store: db}, nil
}

// StoreHandle wraps the on-device store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the on-device Badger store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.Open(cfg.Storage.DataDir, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Debug("Local store opened", "path", cfg.Storage.DataDir)

	return &StoreHandle{Store: db}, nil
}
