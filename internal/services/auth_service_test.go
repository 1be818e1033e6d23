package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       "user-1",
		Email:    "awa@example.ci",
		UserType: models.UserTypeClient,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret", 3600)

	token, err := auth.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "awa@example.ci", claims.Email)
	assert.Equal(t, string(models.UserTypeClient), claims.UserType)
	assert.Equal(t, "kefystore", claims.Issuer)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	auth := NewAuthService("test-secret", 3600)
	other := NewAuthService("another-secret", 3600)

	token, err := auth.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestBlacklistedTokenRejected(t *testing.T) {
	auth := NewAuthService("test-secret", 3600)

	token, err := auth.GenerateToken(testUser())
	require.NoError(t, err)

	require.NoError(t, auth.BlacklistToken(token))

	_, err = auth.ValidateToken(token)
	assert.ErrorContains(t, err, "revoked")
	assert.True(t, auth.IsTokenBlacklisted(token))
}

func TestRefreshToken(t *testing.T) {
	// A 30-minute token is always within the refresh window
	auth := NewAuthService("test-secret", 1800)

	token, err := auth.GenerateToken(testUser())
	require.NoError(t, err)

	refreshed, err := auth.RefreshToken(token)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestRefreshRejectsFreshToken(t *testing.T) {
	auth := NewAuthService("test-secret", 24*3600)

	token, err := auth.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = auth.RefreshToken(token)
	assert.ErrorContains(t, err, "not close to expiry")
}
