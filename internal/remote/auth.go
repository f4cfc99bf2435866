package remote

import (
	"context"
	"net/http"

	"github.com/mydiary/mydiary/internal/api/dto"
	"github.com/mydiary/mydiary/internal/domain"
)

// Session returns the stored session, refreshing it first when the access
// token has expired. It returns nil, nil when signed out or when the
// session can no longer be renewed.
func (c *Client) Session(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.sessions.LoadSession(ctx)
	if err != nil || sess == nil {
		return nil, err
	}

	now := c.now()
	if !sess.AccessExpired(now) {
		return sess, nil
	}
	if sess.RefreshExpired(now) || sess.RefreshToken == "" {
		c.logger.Info("cloud session expired")
		return nil, c.sessions.ClearSession(ctx)
	}

	var resp dto.SessionResponse
	err = c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshRequest{RefreshToken: sess.RefreshToken}, &resp)
	if isAuthFailure(err) {
		c.logger.Info("cloud session revoked", "error", err)
		return nil, c.sessions.ClearSession(ctx)
	}
	if err != nil {
		return nil, err
	}

	return c.store(ctx, &resp)
}

// SignUp creates an account and stores its session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/signup", email, password)
}

// SignIn signs in with a password and stores the session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/signin", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*domain.Session, error) {
	var resp dto.SessionResponse
	if err := c.do(ctx, http.MethodPost, path, "", dto.Credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(ctx, &resp)
}

// SignOut ends the session on the server and forgets it locally. The local
// session is cleared even when the server cannot be reached.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.sessions.LoadSession(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signout", sess.AccessToken, nil, nil); err != nil && !isAuthFailure(err) {
		c.logger.Warn("remote sign-out failed, clearing local session anyway", "error", err)
	}
	return c.sessions.ClearSession(ctx)
}

// RequestPasswordReset asks the server to issue a reset token. The token is
// only returned by servers running in development mode.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp dto.ResetResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/reset-password/request", "", dto.ResetRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ResetPassword sets a new password with a reset token. The server ends
// every session of the account, including the one stored here.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/reset-password/confirm", "",
		dto.ResetConfirm{Token: token, Password: newPassword}, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions.ClearSession(ctx)
}

// store persists a session response. Callers hold c.mu.
func (c *Client) store(ctx context.Context, resp *dto.SessionResponse) (*domain.Session, error) {
	sess := &domain.Session{
		SessionID:        resp.SessionID,
		UserID:           resp.User.ID,
		Email:            resp.User.Email,
		AccessToken:      resp.AccessToken,
		RefreshToken:     resp.RefreshToken,
		AccessExpiresAt:  resp.ExpiresAt,
		RefreshExpiresAt: resp.RefreshExpiresAt,
	}
	if err := c.sessions.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
