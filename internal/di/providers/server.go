package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/mydiary/mydiary/internal/account"
	"github.com/mydiary/mydiary/internal/api"
	"github.com/mydiary/mydiary/internal/config"
	"github.com/mydiary/mydiary/internal/logger"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer builds the API and starts listening in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.ServerConfig](i)
	storeHandle := do.MustInvoke[*CloudStoreHandle](i)
	accounts := do.MustInvoke[*account.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := api.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		DevMode:        cfg.HTTP.DevMode,
		AuthRateLimit:  cfg.AuthRatePerSecond(),
		AuthBurst:      cfg.HTTP.AuthBurst,
	}
	handler := api.NewServer(accounts, storeHandle.Store, opts, log.Logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
