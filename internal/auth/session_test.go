package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/findmate/internal/db"
	"github.com/erazemk/findmate/internal/model"
	"github.com/erazemk/findmate/internal/store"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := &Sessions{
		Secret:  "secret",
		TTL:     time.Hour,
		Revoked: store.New(db.NewTestDB(t)),
	}
	u := &model.User{ID: 7, FullName: "Alice", Email: "alice@campus.edu", Role: model.RoleUser}

	token, expires, err := s.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := s.Verify(ctx, token)
	require.NoError(t, err)

	actor := claims.Actor()
	assert.Equal(t, int64(7), actor.UserID)
	assert.Equal(t, "Alice", actor.Name)
	assert.False(t, actor.IsAdmin())

	require.NoError(t, s.Revoke(ctx, claims))
	_, err = s.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrRevoked)

	// Other sessions of the same user stay valid.
	other, _, err := s.Issue(u)
	require.NoError(t, err)
	_, err = s.Verify(ctx, other)
	assert.NoError(t, err)
}

func TestNilClaimsActor(t *testing.T) {
	var c *Claims
	assert.Nil(t, c.Actor())
}

func TestVerifyRejectsDeletedAccount(t *testing.T) {
	ctx := context.Background()
	st := store.New(db.NewTestDB(t))
	s := &Sessions{Secret: "secret", TTL: time.Hour, Revoked: st, Users: st}

	u, err := st.CreateUser(ctx, model.User{
		FullName: "Alice", Email: "alice@campus.edu", PasswordHash: "hash",
		Role: model.RoleAdmin, Verified: true, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	// A token minted with a stale role still carries the stored one.
	token, _, err := s.Issue(&model.User{ID: u.ID, FullName: "Alice", Email: u.Email, Role: model.RoleUser})
	require.NoError(t, err)
	claims, err := s.Verify(ctx, token)
	require.NoError(t, err)
	assert.True(t, claims.Actor().IsAdmin())

	deleted, err := st.DeleteUser(ctx, u.ID, time.Now())
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = s.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrAccountGone)

	ghost, _, err := s.Issue(&model.User{ID: u.ID + 100, Email: "ghost@campus.edu", Role: model.RoleAdmin})
	require.NoError(t, err)
	_, err = s.Verify(ctx, ghost)
	assert.ErrorIs(t, err, ErrAccountGone)
}
