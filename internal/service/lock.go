package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/remote"
	"github.com/mydiary/mydiary/internal/storage"
	"github.com/mydiary/mydiary/internal/store"
)

// GateState is where the app stands on the way to the journal.
type GateState string

const (
	StateModeUnchosen    GateState = "mode-unchosen"
	StateLockNotSet      GateState = "lock-not-set"
	StateLocked          GateState = "locked"
	StateUnlocked        GateState = "unlocked"
	StateUnauthenticated GateState = "unauthenticated"
	StateAuthenticated   GateState = "authenticated"
)

// Open reports whether entry operations are available in this state.
func (s GateState) Open() bool {
	return s == StateUnlocked || s == StateAuthenticated
}

var (
	// ErrLockNotSet is returned when unlocking before a password exists.
	ErrLockNotSet = domainerrors.Validation("no lock password has been set")
	// ErrLockAlreadySet is returned by SetLockPassword when a password exists.
	ErrLockAlreadySet = domainerrors.AlreadyExists("a lock password is already set")
	// ErrWrongPassword is returned for a failed unlock.
	ErrWrongPassword = domainerrors.InvalidCredentials("incorrect password")
	// ErrCloudUnconfigured is returned by cloud operations without a backend URL.
	ErrCloudUnconfigured = domainerrors.Validation("no cloud backend is configured")
)

// LockGate guards access to the journal. In local mode it checks a password
// kept in local settings; in cloud mode it defers to the hosted session.
//
// The local password is stored and compared as plaintext.
type LockGate struct {
	store  *store.Store
	router *storage.Router
	cloud  *remote.Client
	logger *slog.Logger

	mu       sync.Mutex
	unlocked bool
}

// NewLockGate creates a gate. cloud may be nil when no backend is
// configured; cloud operations then fail with ErrCloudUnconfigured.
func NewLockGate(store *store.Store, router *storage.Router, cloud *remote.Client, logger *slog.Logger) *LockGate {
	return &LockGate{
		store:  store,
		router: router,
		cloud:  cloud,
		logger: logger,
	}
}

// State walks the entry state machine for the current mode.
func (g *LockGate) State(ctx context.Context) (GateState, error) {
	chosen, err := g.router.IsModeChosen(ctx)
	if err != nil {
		return "", err
	}
	if !chosen {
		return StateModeUnchosen, nil
	}

	mode, err := g.router.Mode(ctx)
	if err != nil {
		return "", err
	}

	if mode == domain.StorageCloud {
		if g.cloud == nil {
			return StateUnauthenticated, nil
		}
		sess, err := g.cloud.Session(ctx)
		if err != nil {
			return "", fmt.Errorf("check session: %w", err)
		}
		if sess == nil {
			return StateUnauthenticated, nil
		}
		return StateAuthenticated, nil
	}

	set, err := g.IsLockSetup(ctx)
	if err != nil {
		return "", err
	}
	if !set {
		return StateLockNotSet, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unlocked {
		return StateUnlocked, nil
	}
	return StateLocked, nil
}

// ChooseMode records the storage mode picked on first run.
func (g *LockGate) ChooseMode(ctx context.Context, mode domain.StorageMode) error {
	return g.router.SetMode(ctx, mode)
}

// IsLockSetup reports whether a local password has been saved.
func (g *LockGate) IsLockSetup(ctx context.Context) (bool, error) {
	var pw string
	ok, err := g.store.GetSetting(ctx, domain.SettingLockPassword, &pw)
	if err != nil {
		return false, fmt.Errorf("read lock password: %w", err)
	}
	return ok, nil
}

// SetLockPassword saves the first lock password. The gate stays locked.
func (g *LockGate) SetLockPassword(ctx context.Context, password string) error {
	if err := checkLockPassword(password); err != nil {
		return err
	}
	set, err := g.IsLockSetup(ctx)
	if err != nil {
		return err
	}
	if set {
		return ErrLockAlreadySet
	}
	if err := g.store.SetSetting(ctx, domain.SettingLockPassword, password); err != nil {
		return fmt.Errorf("save lock password: %w", err)
	}
	g.logger.Info("lock password set")
	return nil
}

// ChangeLockPassword replaces the lock password after checking the current
// one.
func (g *LockGate) ChangeLockPassword(ctx context.Context, current, next string) error {
	if err := checkLockPassword(next); err != nil {
		return err
	}
	ok, err := g.VerifyLockPassword(ctx, current)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPassword
	}
	if err := g.store.SetSetting(ctx, domain.SettingLockPassword, next); err != nil {
		return fmt.Errorf("save lock password: %w", err)
	}
	g.logger.Info("lock password changed")
	return nil
}

// VerifyLockPassword compares password with the stored one byte for byte.
// Without a stored password nothing matches.
func (g *LockGate) VerifyLockPassword(ctx context.Context, password string) (bool, error) {
	var stored string
	ok, err := g.store.GetSetting(ctx, domain.SettingLockPassword, &stored)
	if err != nil {
		return false, fmt.Errorf("read lock password: %w", err)
	}
	if !ok {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, nil
}

// Unlock opens the gate for the rest of the process when password matches.
func (g *LockGate) Unlock(ctx context.Context, password string) error {
	set, err := g.IsLockSetup(ctx)
	if err != nil {
		return err
	}
	if !set {
		return ErrLockNotSet
	}
	ok, err := g.VerifyLockPassword(ctx, password)
	if err != nil {
		return err
	}
	if !ok {
		g.logger.Warn("unlock attempt failed")
		return ErrWrongPassword
	}

	g.mu.Lock()
	g.unlocked = true
	g.mu.Unlock()
	return nil
}

// Lock closes the gate again.
func (g *LockGate) Lock() {
	g.mu.Lock()
	g.unlocked = false
	g.mu.Unlock()
}

// SignUp creates a hosted account and switches storage to the cloud.
func (g *LockGate) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	if g.cloud == nil {
		return nil, ErrCloudUnconfigured
	}
	sess, err := g.cloud.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := g.router.SetMode(ctx, domain.StorageCloud); err != nil {
		return nil, err
	}
	return sess, nil
}

// SignIn starts a hosted session.
func (g *LockGate) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if g.cloud == nil {
		return nil, ErrCloudUnconfigured
	}
	return g.cloud.SignIn(ctx, email, password)
}

// SignOut ends the hosted session.
func (g *LockGate) SignOut(ctx context.Context) error {
	if g.cloud == nil {
		return ErrCloudUnconfigured
	}
	return g.cloud.SignOut(ctx)
}

// RequestPasswordReset asks the backend for a reset token. The token is
// only returned by backends running in development mode.
func (g *LockGate) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if g.cloud == nil {
		return "", ErrCloudUnconfigured
	}
	return g.cloud.RequestPasswordReset(ctx, email)
}

// ResetPassword sets a new hosted password with a reset token.
func (g *LockGate) ResetPassword(ctx context.Context, token, password string) error {
	if g.cloud == nil {
		return ErrCloudUnconfigured
	}
	return g.cloud.ResetPassword(ctx, token, password)
}

func checkLockPassword(pw string) error {
	if len(pw) < domain.MinPasswordLength {
		return domainerrors.ValidationWithDetails(
			fmt.Sprintf("password must be at least %d characters", domain.MinPasswordLength),
			map[string]string{"password": fmt.Sprintf("must be at least %d characters", domain.MinPasswordLength)},
		)
	}
	return nil
}
