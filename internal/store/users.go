package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/findmate/internal/model"
)

const userColumns = `id, full_name, email, phone, password_hash, role, verified,
	verify_token_hash, verify_expires, reset_token_hash, reset_expires, created_at, deleted_at`

func scanUser(s scanner) (*model.User, error) {
	u := &model.User{}
	var verifyHash, resetHash sql.NullString
	var verifyExp, resetExp, deleted sql.NullInt64
	var created int64
	err := s.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Verified,
		&verifyHash, &verifyExp, &resetHash, &resetExp, &created, &deleted)
	if err != nil {
		return nil, err
	}
	u.Verification = token(verifyHash, verifyExp)
	u.Reset = token(resetHash, resetExp)
	u.CreatedAt = fromNanos(created)
	u.DeletedAt = nullNanos(deleted)
	return u, nil
}

func token(hash sql.NullString, expires sql.NullInt64) *model.Token {
	if !hash.Valid || !expires.Valid {
		return nil
	}
	return &model.Token{Hash: hash.String, ExpiresAt: fromNanos(expires.Int64)}
}

func tokenArgs(t *model.Token) (any, any) {
	if t == nil {
		return nil, nil
	}
	return t.Hash, nanos(t.ExpiresAt)
}

func (s *Store) queryUser(ctx context.Context, what, query string, args ...any) (*model.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return u, nil
}

// CreateUser inserts u, including any outstanding verification token, and
// returns the stored row. A duplicate active email yields ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	hash, expires := tokenArgs(u.Verification)
	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (full_name, email, phone, password_hash, role, verified,
		     verify_token_hash, verify_expires, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.FullName, model.NormalizeEmail(u.Email), u.Phone, u.PasswordHash, u.Role, u.Verified,
		hash, expires, nanos(u.CreatedAt),
	)
	if err != nil {
		if isConstraint(err) {
			return nil, fmt.Errorf("creating user: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return s.GetUser(ctx, id)
}

// GetUser returns a user by ID, including soft-deleted users.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.queryUser(ctx, "getting user",
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail returns the active user with the given email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.queryUser(ctx, "getting user by email",
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`,
		model.NormalizeEmail(email))
}

// ListUsers returns all non-deleted users.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of non-deleted users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// CountAdmins returns the number of non-deleted administrators.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ? AND deleted_at IS NULL`, model.RoleAdmin,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}

// UpdateUserPassword updates a user's password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user. Their reports and reunited records keep
// the reference. It reports whether an active user was deleted.
func (s *Store) DeleteUser(ctx context.Context, id int64, at time.Time) (bool, error) {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET deleted_at = ?,
		     verify_token_hash = NULL, verify_expires = NULL,
		     reset_token_hash = NULL, reset_expires = NULL
		 WHERE id = ? AND deleted_at IS NULL`,
		nanos(at), id,
	)
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	return n == 1, nil
}
