// Package remote is the HTTP client for the hosted diary API. It keeps the
// signed-in session in a SessionStore, refreshes it when the access token
// expires, and returns entries in the same shape as the local store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mydiary/mydiary/internal/api/dto"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/logger"
)

// DefaultTimeout bounds every request when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

var (
	// ErrAuthRequired is returned by entry operations without a usable session.
	ErrAuthRequired = domainerrors.AuthRequired("sign in to use cloud storage")
	// ErrUnavailable wraps network failures and 5xx responses.
	ErrUnavailable = domainerrors.ErrUnavailable
	// ErrNotFound is returned by GetEntry for unknown ids.
	ErrNotFound = domainerrors.NotFound("entry not found")
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client talks to the hosted API.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	sessions  SessionStore
	logger    *slog.Logger
	now       func() time.Time

	// mu serializes session refreshes.
	mu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, sessions SessionStore, log *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domainerrors.Validationf("invalid backend URL %q", cfg.BaseURL)
	}
	if sessions == nil {
		return nil, domainerrors.Validation("session store is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "mydiary-client/1.0"
	}

	c := &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		http:      httpClient,
		userAgent: userAgent,
		sessions:  sessions,
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

// do sends a JSON request and decodes a JSON response into out. Non-2xx
// responses come back as *domainerrors.Error carrying the server's code.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("remote request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return domainerrors.Unavailable(err, "backend unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	return c.parseResponse(resp, out)
}

func (c *Client) parseResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domainerrors.Unavailable(err, "read response")
	}

	c.logger.Debug("remote response", "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode >= 300 {
		return responseError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domainerrors.Unavailable(err, "decode response")
	}
	return nil
}

// responseError rebuilds the domain error the server encoded.
func responseError(status int, data []byte) *domainerrors.Error {
	var body dto.ErrorResponse
	_ = json.Unmarshal(data, &body) //nolint:errcheck // Fall back to the status below

	code := domainerrors.Code(body.Code)
	if code == "" {
		code = domainerrors.CodeForStatus(status)
	}
	msg := body.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	if status >= http.StatusInternalServerError {
		return domainerrors.Unavailable(fmt.Errorf("status %d: %s", status, msg), "backend error")
	}
	return &domainerrors.Error{Code: code, Message: msg, Details: body.Details}
}

// isAuthFailure reports whether err means the presented token was refused.
func isAuthFailure(err error) bool {
	var e *domainerrors.Error
	if !errors.As(err, &e) {
		return false
	}
	return e.HTTPStatus() == http.StatusUnauthorized
}
