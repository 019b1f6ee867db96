package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/model"
)

// ErrRevoked is returned for a session token that was logged out.
var ErrRevoked = errors.New("token revoked")

// ErrAccountGone is returned for a session whose account was deleted.
var ErrAccountGone = errors.New("account no longer exists")

// Revocations records logged-out session tokens.
type Revocations interface {
	RevokeToken(ctx context.Context, jti string, expiresAt, now time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Accounts loads the account behind a session.
type Accounts interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// Sessions issues, verifies and revokes session tokens.
type Sessions struct {
	Secret  string
	TTL     time.Duration
	Revoked Revocations
	Now     func() time.Time

	// Users, when set, is consulted on every Verify so deleted accounts lose
	// their sessions and role changes apply immediately.
	Users Accounts
}

func (s *Sessions) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Sessions) ttl() time.Duration {
	if s.TTL <= 0 {
		return TokenExpiry
	}
	return s.TTL
}

// Issue creates a session token for u and returns it with its expiry.
func (s *Sessions) Issue(u *model.User) (string, time.Time, error) {
	now := s.now()
	token, err := GenerateToken(s.Secret, Subject{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.FullName,
		Role:   u.Role,
	}, s.ttl(), now)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Add(s.ttl()), nil
}

// Verify validates token and checks that it was not revoked.
func (s *Sessions) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := ValidateToken(s.Secret, token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.Revoked.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	if s.Users == nil {
		return claims, nil
	}

	u, err := s.Users.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}
	if u == nil || u.DeletedAt != nil {
		return nil, ErrAccountGone
	}
	claims.Email = u.Email
	claims.Name = u.FullName
	claims.Role = u.Role
	return claims, nil
}

// Revoke logs out the session described by claims.
func (s *Sessions) Revoke(ctx context.Context, claims *Claims) error {
	expires := s.now().Add(s.ttl())
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return s.Revoked.RevokeToken(ctx, claims.ID, expires, s.now())
}

// Actor returns the request identity carried by the claims.
func (c *Claims) Actor() *access.Actor {
	if c == nil {
		return nil
	}
	return &access.Actor{UserID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role}
}
