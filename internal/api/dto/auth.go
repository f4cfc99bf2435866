package dto

import "time"

// Credentials is the body of sign-up and sign-in.
type Credentials struct {
	Email    string `json:"email" format:"email" maxLength:"254" doc:"Account email"`
	Password string `json:"password" minLength:"4" maxLength:"1024" doc:"Account password"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token from a previous auth response"`
}

// ResetRequest asks for a password reset token.
type ResetRequest struct {
	Email string `json:"email" format:"email" maxLength:"254" doc:"Account email"`
}

// ResetConfirm sets a new password with a reset token.
type ResetConfirm struct {
	Token    string `json:"token" minLength:"1" doc:"Reset token"`
	Password string `json:"password" minLength:"4" maxLength:"1024" doc:"New password"`
}

// User is the public view of an account.
type User struct {
	ID          string     `json:"id" doc:"User ID"`
	Email       string     `json:"email" doc:"Account email"`
	CreatedAt   time.Time  `json:"created_at" doc:"Account creation time"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" doc:"Last sign-in time"`
}

// SessionResponse is returned by sign-up, sign-in and refresh.
type SessionResponse struct {
	AccessToken      string    `json:"access_token" doc:"PASETO access token"`
	RefreshToken     string    `json:"refresh_token" doc:"Opaque refresh token"`
	SessionID        string    `json:"session_id" doc:"Session identifier"`
	TokenType        string    `json:"token_type" doc:"Always Bearer"`
	ExpiresIn        int       `json:"expires_in" doc:"Access token lifetime in seconds"`
	ExpiresAt        time.Time `json:"expires_at" doc:"Access token expiry"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at" doc:"Refresh token expiry"`
	User             User      `json:"user" doc:"Authenticated user"`
}

// CurrentSession describes the caller of GET /auth/session.
type CurrentSession struct {
	SessionID string    `json:"session_id" doc:"Session identifier"`
	ExpiresAt time.Time `json:"expires_at" doc:"Access token expiry"`
	User      User      `json:"user" doc:"Authenticated user"`
}

// ResetResponse acknowledges a reset request. Token is only filled in when
// the server runs in development mode.
type ResetResponse struct {
	Message string `json:"message" doc:"Status message"`
	Token   string `json:"token,omitempty" doc:"Reset token (development only)"`
}
