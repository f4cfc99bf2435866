package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/mydiary/mydiary/internal/account"
	"github.com/mydiary/mydiary/internal/auth"
	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// principalKey is the context key for the authenticated caller.
const principalKey ctxKey = "principal"

type principal struct {
	user   *domain.User
	claims *auth.AccessClaims
}

func getPrincipal(ctx context.Context) (*principal, error) {
	p, ok := ctx.Value(principalKey).(*principal)
	if !ok || p == nil {
		return nil, domainerrors.AuthRequired("authentication required")
	}
	return p, nil
}

// GetUserID returns the authenticated user ID from context.
// Returns an AUTH_REQUIRED error if the request carried no valid token.
func GetUserID(ctx context.Context) (string, error) {
	p, err := getPrincipal(ctx)
	if err != nil {
		return "", err
	}
	return p.user.ID, nil
}

// GetSessionID returns the session behind the request's access token.
func GetSessionID(ctx context.Context) (string, error) {
	p, err := getPrincipal(ctx)
	if err != nil {
		return "", err
	}
	return p.claims.SessionID, nil
}

// authMiddleware returns a middleware that validates Bearer tokens and stores
// the caller in context. If no token is present or it is invalid, the
// request continues anonymously; handlers use GetUserID to require auth.
func authMiddleware(accounts *account.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, claims, err := accounts.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, &principal{user: user, claims: claims})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
