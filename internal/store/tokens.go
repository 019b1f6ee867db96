package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/findmate/internal/model"
)

// SetVerificationToken replaces the user's verification token pair. It
// reports false when no active user has that id.
func (s *Store) SetVerificationToken(ctx context.Context, userID int64, t model.Token) (bool, error) {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET verify_token_hash = ?, verify_expires = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		t.Hash, nanos(t.ExpiresAt), userID,
	)
	if err != nil {
		return false, fmt.Errorf("setting verification token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting verification token: %w", err)
	}
	return n == 1, nil
}

// ConsumeVerificationToken marks the owner of an unexpired verification
// token as verified and clears the token in one statement. It returns nil
// if no user holds a live token with that hash.
func (s *Store) ConsumeVerificationToken(ctx context.Context, hash string, now time.Time) (*model.User, error) {
	return s.queryUser(ctx, "consuming verification token",
		`UPDATE users SET verified = 1, verify_token_hash = NULL, verify_expires = NULL
		 WHERE verify_token_hash = ? AND verify_expires > ? AND deleted_at IS NULL
		 RETURNING `+userColumns,
		hash, nanos(now))
}

// SetResetToken replaces the user's password reset token pair. It reports
// false when no active user has that id.
func (s *Store) SetResetToken(ctx context.Context, userID int64, t model.Token) (bool, error) {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET reset_token_hash = ?, reset_expires = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		t.Hash, nanos(t.ExpiresAt), userID,
	)
	if err != nil {
		return false, fmt.Errorf("setting reset token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting reset token: %w", err)
	}
	return n == 1, nil
}

// GetUserByResetToken returns the user holding an unexpired reset token with
// the given hash. It does not consume the token.
func (s *Store) GetUserByResetToken(ctx context.Context, hash string, now time.Time) (*model.User, error) {
	return s.queryUser(ctx, "getting user by reset token",
		`SELECT `+userColumns+` FROM users
		 WHERE reset_token_hash = ? AND reset_expires > ? AND deleted_at IS NULL`,
		hash, nanos(now))
}

// ConsumeResetToken sets a new password hash for the holder of an unexpired
// reset token and clears the token in one statement. It returns nil if no
// user holds a live token with that hash.
func (s *Store) ConsumeResetToken(ctx context.Context, hash, passwordHash string, now time.Time) (*model.User, error) {
	return s.queryUser(ctx, "consuming reset token",
		`UPDATE users SET password_hash = ?, reset_token_hash = NULL, reset_expires = NULL
		 WHERE reset_token_hash = ? AND reset_expires > ? AND deleted_at IS NULL
		 RETURNING `+userColumns,
		passwordHash, hash, nanos(now))
}

// RevokeToken adds a session token's JTI to the revocation list.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt, now time.Time) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, nanos(expiresAt),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	// Opportunistically clean up expired revocations.
	_, _ = s.DB.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, nanos(now),
	)

	return nil
}

// IsTokenRevoked checks if a session token's JTI has been revoked.
func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}
