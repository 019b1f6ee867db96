package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/findmate/internal/model"
)

var alice = Subject{UserID: 1, Email: "alice@campus.edu", Name: "Alice", Role: model.RoleAdmin}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, alice, 0, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "alice@campus.edu", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Len(t, claims.ID, 32)
}

func TestTokensHaveDistinctIDs(t *testing.T) {
	now := time.Now()
	a, err := GenerateToken("s", alice, time.Hour, now)
	require.NoError(t, err)
	b, err := GenerateToken("s", alice, time.Hour, now)
	require.NoError(t, err)

	ca, err := ValidateToken("s", a)
	require.NoError(t, err)
	cb, err := ValidateToken("s", b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret1", alice, 0, time.Now())
	require.NoError(t, err)

	_, err = ValidateToken("secret2", token)
	assert.Error(t, err)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", alice, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ValidateToken("secret", token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now()
	token, err := GenerateToken("test", alice, 0, now)
	require.NoError(t, err)
	claims, err := ValidateToken("test", token)
	require.NoError(t, err)

	diff := now.Add(TokenExpiry).Sub(claims.ExpiresAt.Time)
	assert.True(t, diff > -5*time.Second && diff < 5*time.Second, "expiry off by %v", diff)
}
