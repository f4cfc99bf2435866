// Package apitest runs the hosted API on an httptest server backed by a
// temporary SQLite database, for client-side tests.
package apitest

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mydiary/mydiary/internal/account"
	"github.com/mydiary/mydiary/internal/api"
	"github.com/mydiary/mydiary/internal/auth"
	"github.com/mydiary/mydiary/internal/cloud"
	"github.com/mydiary/mydiary/internal/validation"
)

// fastParams keeps argon2id cheap in tests.
var fastParams = auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// Backend is a running hosted API.
type Backend struct {
	URL      string
	Server   *httptest.Server
	Store    *cloud.Store
	Accounts *account.Service
}

// NewBackend starts a backend in development mode and stops it when the
// test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	st, err := cloud.Open(context.Background(), cloud.Config{DSN: filepath.Join(t.TempDir(), "backend.db")}, nil)
	if err != nil {
		t.Fatalf("open cloud store: %v", err)
	}

	tokens, err := auth.NewTokenService(make([]byte, auth.KeyLength), 15*time.Minute, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	accounts := account.NewService(st, tokens, auth.NewHasher(fastParams), validation.New(), nil)
	srv := api.NewServer(accounts, st, api.Options{DevMode: true, AuthRateLimit: 1000, AuthBurst: 1000}, nil)
	ts := httptest.NewServer(srv)

	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		_ = st.Close()
	})

	return &Backend{URL: ts.URL, Server: ts, Store: st, Accounts: accounts}
}
