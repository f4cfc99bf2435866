package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/ratelimit"
)

// authPathPrefix is the route group the auth limiter applies to.
const authPathPrefix = "/api/v1/auth/"

// RateLimitMiddleware rate limits POST requests under the auth routes by
// client IP. Returns 429 Too Many Requests when the limit is exceeded.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, authPathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				writeError(w, domainerrors.RateLimited("too many requests, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the host part of RemoteAddr. The RealIP middleware
// runs first, so forwarded headers are already applied.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// extractIP picks the client address out of forwarding headers for session
// bookkeeping.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		first, _, _ := strings.Cut(xForwardedFor, ",")
		return strings.TrimSpace(first)
	}
	return xRealIP
}
