package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/wishlist-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Wishlist Backend"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-for-unit-tests-only!!",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateAccessToken(7, "alice@example.com")
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "access", claims.TokenType)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	access, err := mgr.GenerateAccessToken(7, "alice@example.com")
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken(7, "alice@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = mgr.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "a-completely-different-signing-secret"
	other := NewJWTManager(otherCfg)

	token, err := other.GenerateAccessToken(7, "alice@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}

func TestHashAndVerifyPassword(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	hash, err := mgr.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.NoError(t, mgr.VerifyPassword("password123", hash))
	assert.Error(t, mgr.VerifyPassword("wrong-password", hash))
}

func TestHashPasswordRejectsWeakInput(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	_, err := mgr.HashPassword("short")
	assert.Error(t, err)
}
