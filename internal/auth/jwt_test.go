package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "bulkwala", time.Hour, 24*time.Hour)
}

func TestGenerateAndValidate(t *testing.T) {
	a := newAuthenticator()

	access, refresh, err := a.GenerateTokens("user-1", "admin")
	require.NoError(t, err)

	claims, err := a.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	rc, err := a.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rc.Subject)
	assert.Empty(t, rc.Role)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	a := newAuthenticator()
	access, refresh, err := a.GenerateTokens("user-1", "customer")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = a.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	a := newAuthenticator()
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return issued }

	access, _, err := a.GenerateTokens("user-1", "customer")
	require.NoError(t, err)

	a.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = a.ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongIssuer(t *testing.T) {
	other := NewJWTAuthenticator("access-secret", "refresh-secret", "someone-else", time.Hour, time.Hour)
	access, _, err := other.GenerateTokens("user-1", "admin")
	require.NoError(t, err)

	_, err = newAuthenticator().ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
