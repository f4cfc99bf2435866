package cloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mydiary/mydiary/internal/domain"
)

const sessionColumns = `id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at, user_agent, ip_address`

func scanSession(row interface{ Scan(dest ...any) error }) (*domain.AuthSession, error) {
	var (
		sess                             domain.AuthSession
		expiresAt, createdAt, lastSeenAt string
	)
	err := row.Scan(&sess.ID, &sess.UserID, &sess.RefreshTokenHash,
		&expiresAt, &createdAt, &lastSeenAt, &sess.UserAgent, &sess.IPAddress)
	if err != nil {
		return nil, err
	}
	if sess.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sess.LastSeenAt, err = parseTime(lastSeenAt); err != nil {
		return nil, err
	}
	return &sess, nil
}

// CreateSession stores a new refresh session.
func (s *Store) CreateSession(ctx context.Context, sess *domain.AuthSession) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		sess.ID, sess.UserID, sess.RefreshTokenHash,
		formatTime(sess.ExpiresAt), formatTime(sess.CreatedAt), formatTime(sess.LastSeenAt),
		sess.UserAgent, sess.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession loads a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.AuthSession, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`), id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// GetSessionByRefreshHash finds the session owning a refresh token.
func (s *Store) GetSessionByRefreshHash(ctx context.Context, hash string) (*domain.AuthSession, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`), hash)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return sess, nil
}

// RotateSession swaps the refresh token of a session, but only if oldHash is
// still current. A concurrent rotation makes the loser see ErrNotFound.
func (s *Store) RotateSession(ctx context.Context, id, oldHash, newHash string, expiresAt, seenAt time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE sessions SET refresh_token_hash = ?, expires_at = ?, last_seen_at = ?
		WHERE id = ? AND refresh_token_hash = ?`),
		newHash, formatTime(expiresAt), formatTime(seenAt), id, oldHash)
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	return requireRow(res)
}

// DeleteSession removes a session. Removing an absent session is not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions signs a user out everywhere.
func (s *Store) DeleteUserSessions(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpiredSessions prunes sessions whose refresh window has passed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE expires_at <= ?`), formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
