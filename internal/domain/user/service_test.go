package user

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/wishlist-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-for-unit-tests-only!!",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:       4, // fastest legal cost, fine for tests
			PasswordResetTTL: time.Hour,
		},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}))
	return NewService(db, testConfig())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(&RegisterRequest{Email: "Alice@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	login, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{Email: "ALICE@example.com", Password: "different456"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	_, unknownEmail := svc.Login(&LoginRequest{Email: "bob@example.com", Password: "password123"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestRefreshToken(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(&RegisterRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not a refresh token
	_, err = svc.RefreshToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestForgotPasswordUnknownEmailSucceeds(t *testing.T) {
	svc := newTestService(t)

	// Must not reveal whether the email is registered
	assert.NoError(t, svc.ForgotPassword(&ForgotPasswordRequest{Email: "ghost@example.com"}))
}

func TestResetPasswordFlow(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))

	var u User
	require.NoError(t, svc.db.Where("email = ?", "alice@example.com").First(&u).Error)
	require.NotNil(t, u.PasswordResetToken)

	require.NoError(t, svc.ResetPassword(&ResetPasswordRequest{
		Token:    *u.PasswordResetToken,
		Password: "newpassword456",
	}))

	_, err = svc.Login(&LoginRequest{Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Email: "alice@example.com", Password: "newpassword456"})
	assert.NoError(t, err)

	// The token is single-use
	err = svc.ResetPassword(&ResetPasswordRequest{Token: *u.PasswordResetToken, Password: "another789"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))

	var u User
	require.NoError(t, svc.db.Where("email = ?", "alice@example.com").First(&u).Error)

	expired := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, svc.db.Model(&u).Update("password_reset_expires", expired).Error)

	err = svc.ResetPassword(&ResetPasswordRequest{Token: *u.PasswordResetToken, Password: "newpassword456"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
