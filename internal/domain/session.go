package domain

import "time"

// Session is an authenticated hosted-backend session as the client keeps it.
type Session struct {
	SessionID        string    `json:"session_id"`
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AccessExpired reports whether the access token needs refreshing at now.
// A small skew keeps a token from expiring mid-request.
func (s *Session) AccessExpired(now time.Time) bool {
	return !now.Add(30 * time.Second).Before(s.AccessExpiresAt)
}

// RefreshExpired reports whether the session can no longer be renewed.
func (s *Session) RefreshExpired(now time.Time) bool {
	return !s.RefreshExpiresAt.IsZero() && !now.Before(s.RefreshExpiresAt)
}
