package cloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mydiary/mydiary/internal/domain"
)

// CreatePasswordReset stores a hashed reset token.
func (s *Store) CreatePasswordReset(ctx context.Context, r *domain.PasswordReset, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO password_resets (token_hash, user_id, expires_at, created_at, used_at)
		VALUES (?, ?, ?, ?, ?)`),
		r.TokenHash, r.UserID, formatTime(r.ExpiresAt), formatTime(createdAt), nullTime(r.UsedAt))
	if err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

// ConsumePasswordReset marks an unused, unexpired token as used and returns
// it. Tokens work once; unknown, used and expired tokens all yield
// ErrNotFound.
func (s *Store) ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (*domain.PasswordReset, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var (
		r         domain.PasswordReset
		expiresAt string
		usedAt    sql.NullString
	)
	err = tx.QueryRowContext(ctx, s.q(`
		SELECT token_hash, user_id, expires_at, used_at FROM password_resets WHERE token_hash = ?`),
		tokenHash).Scan(&r.TokenHash, &r.UserID, &expiresAt, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get password reset: %w", err)
	}
	if r.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if usedAt.Valid || !now.Before(r.ExpiresAt) {
		return nil, ErrNotFound
	}

	res, err := tx.ExecContext(ctx, s.q(`
		UPDATE password_resets SET used_at = ? WHERE token_hash = ? AND used_at IS NULL`),
		formatTime(now), tokenHash)
	if err != nil {
		return nil, fmt.Errorf("consume password reset: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	r.UsedAt = &now
	return &r, nil
}
