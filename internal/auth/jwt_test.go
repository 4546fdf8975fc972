package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", time.Hour, 24*time.Hour, "icommerce", "icommerce")
}

func TestGenerateAndValidateTokens(t *testing.T) {
	a := testAuthenticator()

	access, refresh, err := a.GenerateTokens(42, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	token, err := a.ValidateAccessToken(access)
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	_, err = a.ValidateRefreshToken(refresh)
	assert.NoError(t, err)
}

func TestTokensUseSeparateSecrets(t *testing.T) {
	a := testAuthenticator()

	access, refresh, err := a.GenerateTokens(42, "admin")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(refresh)
	assert.Error(t, err)
	_, err = a.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", -time.Hour, 24*time.Hour, "icommerce", "icommerce")

	access, _, err := a.GenerateTokens(42, "admin")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsTamperedSignature(t *testing.T) {
	a := testAuthenticator()
	other := NewJWTAuthenticator("different-secret", "refresh-secret", time.Hour, 24*time.Hour, "icommerce", "icommerce")

	access, _, err := other.GenerateTokens(42, "admin")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.Error(t, err)
}
