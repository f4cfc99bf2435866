// Package api provides the hosted diary HTTP API: accounts, sessions and
// user-scoped entries.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mydiary/mydiary/internal/account"
	"github.com/mydiary/mydiary/internal/cloud"
	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/logger"
	"github.com/mydiary/mydiary/internal/ratelimit"
)

// EntryStore is the slice of the cloud store the entry handlers need.
type EntryStore interface {
	ListEntries(ctx context.Context, userID string) ([]cloud.Entry, error)
	GetEntry(ctx context.Context, userID, entryID string) (*cloud.Entry, error)
	InsertEntry(ctx context.Context, userID string, draft domain.EntryDraft, now time.Time) (*cloud.Entry, error)
	UpdateEntry(ctx context.Context, userID, entryID string, patch domain.EntryPatch, now time.Time) (*cloud.Entry, error)
	DeleteEntry(ctx context.Context, userID, entryID string) error
	Ping(ctx context.Context) error
}

// Options tunes the server.
type Options struct {
	// AllowedOrigins lists CORS origins for the web client. Empty disables CORS.
	AllowedOrigins []string
	// DevMode returns password reset tokens in the response body.
	DevMode bool
	// AuthRateLimit is the sustained auth requests per second per IP.
	AuthRateLimit float64
	// AuthBurst is the auth request burst per IP.
	AuthBurst int
}

// DefaultOptions returns production defaults: 20 auth requests per minute
// per IP with a burst of 10.
func DefaultOptions() Options {
	return Options{
		AuthRateLimit: 20.0 / 60.0,
		AuthBurst:     10,
	}
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	accounts        *account.Service
	entries         EntryStore
	router          *chi.Mux
	api             huma.API
	authRateLimiter *ratelimit.KeyedRateLimiter
	opts            Options
	logger          *slog.Logger
	now             func() time.Time
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(accounts *account.Service, entries EntryStore, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	if opts.AuthRateLimit <= 0 || opts.AuthBurst <= 0 {
		d := DefaultOptions()
		opts.AuthRateLimit, opts.AuthBurst = d.AuthRateLimit, d.AuthBurst
	}

	s := &Server{
		accounts:        accounts,
		entries:         entries,
		router:          chi.NewRouter(),
		authRateLimiter: ratelimit.New(opts.AuthRateLimit, opts.AuthBurst),
		opts:            opts,
		logger:          log,
		now:             time.Now,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("MyDiary API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerEntryRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(s.opts.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.Use(RateLimitMiddleware(s.authRateLimiter, s.logger))
	s.router.Use(authMiddleware(s.accounts))
}
