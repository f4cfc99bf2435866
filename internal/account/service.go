// Package account implements hosted accounts: sign-up, sign-in, refresh
// token rotation, sign-out and password reset.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mydiary/mydiary/internal/auth"
	"github.com/mydiary/mydiary/internal/cloud"
	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/id"
	"github.com/mydiary/mydiary/internal/logger"
	"github.com/mydiary/mydiary/internal/validation"
)

// Store is the slice of the cloud store the account service needs.
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	RecordLogin(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID, hash string, at time.Time) error

	CreateSession(ctx context.Context, s *domain.AuthSession) error
	GetSession(ctx context.Context, id string) (*domain.AuthSession, error)
	GetSessionByRefreshHash(ctx context.Context, hash string) (*domain.AuthSession, error)
	RotateSession(ctx context.Context, id, oldHash, newHash string, expiresAt, seenAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	CreatePasswordReset(ctx context.Context, r *domain.PasswordReset, createdAt time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (*domain.PasswordReset, error)
}

// DefaultResetTTL is how long a password reset token stays valid.
const DefaultResetTTL = time.Hour

// Credentials is a sign-up or sign-in request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=4,max=1024"`
}

// ClientInfo describes the caller of an auth request.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// Result is an authenticated session handed back to the client.
type Result struct {
	User             *domain.User
	SessionID        string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Service implements the account flows.
type Service struct {
	store     Store
	tokens    *auth.TokenService
	hasher    *auth.Hasher
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
	resetTTL  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithResetTTL overrides DefaultResetTTL.
func WithResetTTL(d time.Duration) Option {
	return func(s *Service) { s.resetTTL = d }
}

// NewService creates the account service.
func NewService(store Store, tokens *auth.TokenService, hasher *auth.Hasher, v *validation.Validator, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		store:     store,
		tokens:    tokens,
		hasher:    hasher,
		validator: v,
		logger:    log,
		now:       time.Now,
		resetTTL:  DefaultResetTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, creds Credentials, client ClientInfo) (*Result, error) {
	if err := s.validator.Validate(creds); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           userID,
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account created", "user_id", userID)
	return s.openSession(ctx, user, client)
}

// SignIn checks a password and opens a session. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) SignIn(ctx context.Context, creds Credentials, client ClientInfo) (*Result, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, domainerrors.Validation("email and password are required")
	}

	user, err := s.store.GetUserByEmail(ctx, creds.Email)
	if errors.Is(err, cloud.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, creds.Password) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	now := s.now().UTC()
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if hash, err := s.hasher.Hash(creds.Password); err == nil {
			if err := s.store.UpdatePassword(ctx, user.ID, hash, now); err != nil {
				s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}
	if err := s.store.RecordLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = now

	s.logger.Info("user signed in", "user_id", user.ID)
	return s.openSession(ctx, user, client)
}

// Refresh rotates a refresh token. The presented token stops working.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*Result, error) {
	if refreshToken == "" {
		return nil, domainerrors.Validation("refresh_token is required")
	}

	oldHash := auth.HashToken(refreshToken)
	sess, err := s.store.GetSessionByRefreshHash(ctx, oldHash)
	if errors.Is(err, cloud.ErrNotFound) {
		return nil, domainerrors.TokenExpired("invalid or expired refresh token")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	now := s.now().UTC()
	if sess.IsExpired(now) {
		_ = s.store.DeleteSession(ctx, sess.ID)
		return nil, domainerrors.TokenExpired("invalid or expired refresh token")
	}

	user, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		_ = s.store.DeleteSession(ctx, sess.ID)
		return nil, domainerrors.TokenExpired("invalid or expired refresh token").WithCause(err)
	}

	newRefresh, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}
	refreshExp := now.Add(s.tokens.RefreshDuration())
	err = s.store.RotateSession(ctx, sess.ID, oldHash, auth.HashToken(newRefresh), refreshExp, now)
	if errors.Is(err, cloud.ErrNotFound) {
		return nil, domainerrors.TokenExpired("refresh token already used")
	}
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, sess.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("session refreshed", "session_id", sess.ID, "ip", client.IPAddress)
	return &Result{
		User:             user,
		SessionID:        sess.ID,
		AccessToken:      access.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     newRefresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// SignOut ends a session. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("session ended", "session_id", sessionID)
	return nil
}

// Authenticate verifies an access token and checks that its session is still
// open, so signing out revokes outstanding access tokens too.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired access token").WithCause(err)
	}

	if _, err := s.store.GetSession(ctx, claims.SessionID); err != nil {
		return nil, nil, domainerrors.Unauthorized("session has ended").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("account not found").WithCause(err)
	}
	return user, claims, nil
}

// RequestPasswordReset issues a reset token for email. The token is returned
// to the caller, which decides how to deliver it. An unknown email yields an
// empty token and no error.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := s.validator.Var("email", email, "required,email"); err != nil {
		return "", err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, cloud.ErrNotFound) {
		s.logger.Info("password reset requested for unknown email")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	err = s.store.CreatePasswordReset(ctx, &domain.PasswordReset{
		TokenHash: auth.HashToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.resetTTL),
	}, now)
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword sets a new password with a reset token and ends every
// session of the account.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.validator.Var("password", newPassword, "required,min=4,max=1024"); err != nil {
		return err
	}

	now := s.now().UTC()
	reset, err := s.store.ConsumePasswordReset(ctx, auth.HashToken(token), now)
	if errors.Is(err, cloud.ErrNotFound) {
		return domainerrors.TokenExpired("invalid or expired reset token")
	}
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, reset.UserID, hash, now); err != nil {
		return err
	}

	n, err := s.store.DeleteUserSessions(ctx, reset.UserID)
	if err != nil {
		return err
	}
	s.logger.Info("password reset", "user_id", reset.UserID, "sessions_ended", n)
	return nil
}

// PruneSessions deletes expired sessions.
func (s *Service) PruneSessions(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned expired sessions", "count", n)
	}
	return n, nil
}

func (s *Service) openSession(ctx context.Context, user *domain.User, client ClientInfo) (*Result, error) {
	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &domain.AuthSession{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashToken(refresh),
		ExpiresAt:        now.Add(s.tokens.RefreshDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
		UserAgent:        client.UserAgent,
		IPAddress:        client.IPAddress,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, sessionID)
	if err != nil {
		return nil, err
	}

	return &Result{
		User:             user,
		SessionID:        sessionID,
		AccessToken:      access.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     refresh,
		RefreshExpiresAt: sess.ExpiresAt,
	}, nil
}
