package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydiary/mydiary/internal/api/dto"
)

func TestSignUp_Success(t *testing.T) {
	ts := setupTestServer(t)

	out := ts.signUp(t, "writer@example.com")

	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Positive(t, out.ExpiresIn)
	assert.Equal(t, "writer@example.com", out.User.Email)
	assert.True(t, out.RefreshExpiresAt.After(out.ExpiresAt))
}

func TestSignUp_Duplicate(t *testing.T) {
	ts := setupTestServer(t)
	ts.signUp(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":    "Writer@Example.com",
		"password": "pass",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeError(t, resp).Code)
}

func TestSignUp_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing email", body: map[string]any{"password": "pass"}},
		{name: "invalid email format", body: map[string]any{"email": "not-an-email", "password": "pass"}},
		{name: "password too short", body: map[string]any{"email": "a@example.com", "password": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/signup", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
			assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
		})
	}
}

func TestSignIn(t *testing.T) {
	ts := setupTestServer(t)
	ts.signUp(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/signin", map[string]any{
		"email":    "writer@example.com",
		"password": "pass",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var out dto.SessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.NotEmpty(t, out.AccessToken)
	require.NotNil(t, out.User.LastLoginAt)

	resp = ts.api.Post("/api/v1/auth/signin", map[string]any{
		"email":    "writer@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp).Code)
}

func TestRefresh(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.signUp(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code)

	var second dto.SessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &second))
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decodeError(t, resp).Code)
}

func TestSignOut(t *testing.T) {
	ts := setupTestServer(t)
	sess := ts.signUp(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/signout", bearer(sess.AccessToken))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/entries", bearer(sess.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "AUTH_REQUIRED", decodeError(t, resp).Code)

	resp = ts.api.Post("/api/v1/auth/signout")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetSession(t *testing.T) {
	ts := setupTestServer(t)
	sess := ts.signUp(t, "writer@example.com")

	resp := ts.api.Get("/api/v1/auth/session", bearer(sess.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var out dto.CurrentSession
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, sess.SessionID, out.SessionID)
	assert.Equal(t, sess.User.ID, out.User.ID)

	resp = ts.api.Get("/api/v1/auth/session", bearer("v4.local.garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPasswordReset_DevMode(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) { o.DevMode = true })
	ts.signUp(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/reset-password/request", map[string]any{"email": "writer@example.com"})
	require.Equal(t, http.StatusOK, resp.Code)

	var reset dto.ResetResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reset))
	require.NotEmpty(t, reset.Token)

	resp = ts.api.Post("/api/v1/auth/reset-password/confirm", map[string]any{
		"token":    reset.Token,
		"password": "fresh",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/signin", map[string]any{"email": "writer@example.com", "password": "fresh"})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/reset-password/confirm", map[string]any{
		"token":    reset.Token,
		"password": "again",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "reset tokens are single use")
}

func TestPasswordReset_HidesToken(t *testing.T) {
	ts := setupTestServer(t)
	ts.signUp(t, "writer@example.com")

	for _, email := range []string{"writer@example.com", "ghost@example.com"} {
		resp := ts.api.Post("/api/v1/auth/reset-password/request", map[string]any{"email": email})
		require.Equal(t, http.StatusOK, resp.Code)

		var reset dto.ResetResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reset))
		assert.Empty(t, reset.Token)
		assert.NotEmpty(t, reset.Message)
	}
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) {
		o.AuthRateLimit = 0.001
		o.AuthBurst = 2
	})

	body := map[string]any{"email": "ghost@example.com", "password": "pass"}
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/signin", body).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/signin", body).Code)

	resp := ts.api.Post("/api/v1/auth/signin", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, resp).Code)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
}
