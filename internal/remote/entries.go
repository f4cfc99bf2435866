package remote

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/mydiary/mydiary/internal/api/dto"
	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
)

// ListEntries returns the signed-in user's entries, newest date first.
func (c *Client) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	var resp dto.EntryList
	if err := c.authorized(ctx, http.MethodGet, "/api/v1/entries", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.Entry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		out = append(out, e.ToDomain())
	}
	return out, nil
}

// GetEntry returns one entry or ErrNotFound.
func (c *Client) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	var resp dto.Entry
	err := c.authorized(ctx, http.MethodGet, entryPath(id), nil, &resp)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e := resp.ToDomain()
	return &e, nil
}

// InsertEntry creates an entry; the server assigns its id and timestamps.
func (c *Client) InsertEntry(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error) {
	var resp dto.Entry
	if err := c.authorized(ctx, http.MethodPost, "/api/v1/entries", dto.EntryCreateFromDraft(draft), &resp); err != nil {
		return nil, err
	}
	e := resp.ToDomain()
	return &e, nil
}

// UpdateEntry applies patch. Updating an unknown id is a no-op.
func (c *Client) UpdateEntry(ctx context.Context, id string, patch domain.EntryPatch) error {
	err := c.authorized(ctx, http.MethodPatch, entryPath(id), dto.EntryPatchFromDomain(patch), nil)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteEntry removes an entry. Deleting an unknown id is a no-op.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	err := c.authorized(ctx, http.MethodDelete, entryPath(id), nil, nil)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil
	}
	return err
}

// authorized runs a request with the current session. A missing session or
// a token the server refuses yields ErrAuthRequired; a refused token also
// clears the stored session.
func (c *Client) authorized(ctx context.Context, method, path string, body, out any) error {
	sess, err := c.Session(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrAuthRequired
	}

	err = c.do(ctx, method, path, sess.AccessToken, body, out)
	if isAuthFailure(err) {
		c.mu.Lock()
		clearErr := c.sessions.ClearSession(ctx)
		c.mu.Unlock()
		if clearErr != nil {
			c.logger.Warn("failed to clear rejected session", "error", clearErr)
		}
		return ErrAuthRequired.WithCause(err)
	}
	return err
}

func entryPath(id string) string {
	return "/api/v1/entries/" + url.PathEscape(id)
}
