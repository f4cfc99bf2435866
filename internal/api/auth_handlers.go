package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mydiary/mydiary/internal/account"
	"github.com/mydiary/mydiary/internal/api/dto"
	"github.com/mydiary/mydiary/internal/domain"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "signUp",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/signup",
		Summary:       "Create account",
		Description:   "Creates an account and returns a session",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSignUp)

	huma.Register(s.api, huma.Operation{
		OperationID: "signIn",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signin",
		Summary:     "Sign in",
		Description: "Authenticates with email and password and returns a session",
		Tags:        []string{"Authentication"},
	}, s.handleSignIn)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for a new token pair. The old refresh token is spent.",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID:   "signOut",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/signout",
		Summary:       "Sign out",
		Description:   "Ends the session behind the bearer token",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleSignOut)

	huma.Register(s.api, huma.Operation{
		OperationID: "requestPasswordReset",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/reset-password/request",
		Summary:     "Request password reset",
		Description: "Issues a single-use reset token. The response is the same whether or not the account exists.",
		Tags:        []string{"Authentication"},
	}, s.handleRequestPasswordReset)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmPasswordReset",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/reset-password/confirm",
		Summary:     "Reset password",
		Description: "Sets a new password with a reset token and ends every session of the account",
		Tags:        []string{"Authentication"},
	}, s.handleConfirmPasswordReset)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/session",
		Summary:     "Current session",
		Description: "Returns the user behind the bearer token",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSession)
}

// ClientHeaders carries request metadata recorded on sessions.
type ClientHeaders struct {
	UserAgent     string `header:"User-Agent"`
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

func (h ClientHeaders) clientInfo() account.ClientInfo {
	return account.ClientInfo{
		UserAgent: h.UserAgent,
		IPAddress: extractIP(h.XForwardedFor, h.XRealIP),
	}
}

// CredentialsInput wraps sign-up and sign-in bodies for Huma.
type CredentialsInput struct {
	ClientHeaders
	Body dto.Credentials
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	ClientHeaders
	Body dto.RefreshRequest
}

// ResetRequestInput wraps the reset request for Huma.
type ResetRequestInput struct {
	Body dto.ResetRequest
}

// ResetConfirmInput wraps the reset confirmation for Huma.
type ResetConfirmInput struct {
	Body dto.ResetConfirm
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body dto.SessionResponse
}

// CurrentSessionOutput wraps the current session for Huma.
type CurrentSessionOutput struct {
	Body dto.CurrentSession
}

// ResetOutput wraps the reset response for Huma.
type ResetOutput struct {
	Body dto.ResetResponse
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body dto.MessageResponse
}

func (s *Server) handleSignUp(ctx context.Context, input *CredentialsInput) (*SessionOutput, error) {
	res, err := s.accounts.SignUp(ctx, account.Credentials{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}, input.clientInfo())
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: s.mapSession(res)}, nil
}

func (s *Server) handleSignIn(ctx context.Context, input *CredentialsInput) (*SessionOutput, error) {
	res, err := s.accounts.SignIn(ctx, account.Credentials{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}, input.clientInfo())
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: s.mapSession(res)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*SessionOutput, error) {
	res, err := s.accounts.Refresh(ctx, input.Body.RefreshToken, input.clientInfo())
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: s.mapSession(res)}, nil
}

func (s *Server) handleSignOut(ctx context.Context, _ *struct{}) (*struct{}, error) {
	sessionID, err := GetSessionID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SignOut(ctx, sessionID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleRequestPasswordReset(ctx context.Context, input *ResetRequestInput) (*ResetOutput, error) {
	token, err := s.accounts.RequestPasswordReset(ctx, input.Body.Email)
	if err != nil {
		return nil, err
	}

	out := &ResetOutput{Body: dto.ResetResponse{
		Message: "If the account exists, a reset token has been issued",
	}}
	if token != "" {
		// There is no mail transport; the operator relays the token.
		s.logger.Info("password reset token issued", "email", input.Body.Email, "token", token)
		if s.opts.DevMode {
			out.Body.Token = token
		}
	}
	return out, nil
}

func (s *Server) handleConfirmPasswordReset(ctx context.Context, input *ResetConfirmInput) (*MessageOutput, error) {
	if err := s.accounts.ResetPassword(ctx, input.Body.Token, input.Body.Password); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: dto.MessageResponse{Message: "Password updated"}}, nil
}

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*CurrentSessionOutput, error) {
	p, err := getPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	return &CurrentSessionOutput{Body: dto.CurrentSession{
		SessionID: p.claims.SessionID,
		ExpiresAt: p.claims.Expiration,
		User:      mapUser(p.user),
	}}, nil
}

// === Helpers ===

func (s *Server) mapSession(res *account.Result) dto.SessionResponse {
	expiresIn := int(res.AccessExpiresAt.Sub(s.now()).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return dto.SessionResponse{
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		SessionID:        res.SessionID,
		TokenType:        "Bearer",
		ExpiresIn:        expiresIn,
		ExpiresAt:        res.AccessExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
		User:             mapUser(res.User),
	}
}

func mapUser(u *domain.User) dto.User {
	out := dto.User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
	if !u.LastLoginAt.IsZero() {
		t := u.LastLoginAt
		out.LastLoginAt = &t
	}
	return out
}
