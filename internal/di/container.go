// Package di provides dependency injection configuration for the diary
// client and the hosted backend.
package di

import (
	"github.com/samber/do/v2"

	"github.com/mydiary/mydiary/internal/account"
	"github.com/mydiary/mydiary/internal/config"
	"github.com/mydiary/mydiary/internal/di/providers"
	"github.com/mydiary/mydiary/internal/logger"
	"github.com/mydiary/mydiary/internal/service"
)

// NewServerContainer creates the backend container. args are the
// command-line arguments without the program name.
func NewServerContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, providers.ServerArgs(args))
	do.Provide(injector, providers.ProvideServerConfig)
	do.Provide(injector, providers.ProvideServerLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideCloudStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideHasher)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAccountService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// BootstrapServer initializes the backend and starts the HTTP server.
func BootstrapServer(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.ServerConfig](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CloudStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*account.Service](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SessionCleanupJob](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}

// NewClientContainer creates the client container. Services are built on
// first use, so a command only opens what it needs. A nil notifier logs
// achievement unlocks.
func NewClientContainer(flags config.ClientFlags, notifier service.Notifier) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, flags)
	do.Provide(injector, providers.ProvideClientConfig)
	do.Provide(injector, providers.ProvideClientLogger)
	do.Provide(injector, providers.ProvideValidator)
	if notifier != nil {
		do.ProvideValue[service.Notifier](injector, notifier)
	}

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideRemote)
	do.Provide(injector, providers.ProvideRouter)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideStreakService)
	do.Provide(injector, providers.ProvideAchievementService)
	do.Provide(injector, providers.ProvideJournalService)
	do.Provide(injector, providers.ProvideLockGate)
	do.Provide(injector, providers.ProvidePreferencesService)
	do.Provide(injector, providers.ProvideQuoteService)
	do.Provide(injector, providers.ProvideBackupService)

	return injector
}

// Logger returns the container's logger, for use after a failed bootstrap
// as well.
func Logger(injector do.Injector) *logger.Logger {
	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		return &logger.Logger{Logger: logger.Discard()}
	}
	return log
}
