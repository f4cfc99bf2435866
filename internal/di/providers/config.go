// Package providers contains dependency injection providers for the diary
// client and the hosted backend.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/mydiary/mydiary/internal/config"
	"github.com/mydiary/mydiary/internal/logger"
)

// ServerArgs are the backend's command-line arguments, without the program name.
type ServerArgs []string

// ProvideServerConfig provides the backend configuration.
func ProvideServerConfig(i do.Injector) (*config.ServerConfig, error) {
	args := do.MustInvoke[ServerArgs](i)
	return config.LoadServerConfig(args)
}

// ProvideServerLogger provides the backend's structured logger.
func ProvideServerLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.ServerConfig](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting diary backend",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.DataDir,
		"db_dialect", cfg.Database.Dialect,
		"dev_mode", cfg.HTTP.DevMode,
	)

	return log, nil
}

// ProvideClientConfig provides the client configuration.
func ProvideClientConfig(i do.Injector) (*config.ClientConfig, error) {
	flags := do.MustInvoke[config.ClientFlags](i)
	return config.LoadClientConfig(flags)
}

// ProvideClientLogger provides the client's logger. The client is a
// terminal program, so it always logs in the pretty format.
func ProvideClientLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      "pretty",
		Environment: cfg.App.Environment,
	})

	log.Debug("Starting diary client",
		"data_dir", cfg.Storage.DataDir,
		"backend_url", cfg.Backend.URL,
		"strict", cfg.Backend.Strict,
	)

	return log, nil
}
