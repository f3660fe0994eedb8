package user_test

import (
	"testing"
	"time"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/domain/user"
	"github.com/pawverse/petstore-backend/internal/pkg/auth"
	"github.com/pawverse/petstore-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *user.Service {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "pawverse-test"},
		JWT: config.JWTConfig{
			Secret:             "user-service-test-secret-0123456789",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	return user.NewService(testutil.NewDB(t), cfg)
}

func register(t *testing.T, svc *user.Service, email string) *user.AuthResponse {
	t.Helper()
	res, err := svc.Register(&user.RegisterRequest{
		Email:           email,
		Password:        "whiskers99",
		ConfirmPassword: "whiskers99",
		FirstName:       "Nia",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newService(t)

	res := register(t, svc, "Nia@Example.com ")
	assert.Equal(t, "nia@example.com", res.User.Email)
	assert.NotEmpty(t, res.AccessToken)

	_, err := svc.Register(&user.RegisterRequest{Email: "nia@example.com", Password: "whiskers99", ConfirmPassword: "whiskers99", FirstName: "X"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	login, err := svc.Authenticate(&user.LoginRequest{Email: "NIA@example.com", Password: "whiskers99"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotNil(t, login.User.LastLoginAt)

	_, err = svc.Authenticate(&user.LoginRequest{Email: "nia@example.com", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = svc.Authenticate(&user.LoginRequest{Email: "ghost@example.com", Password: "whiskers99"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	svc := newService(t)

	_, err := svc.Register(&user.RegisterRequest{Email: "a@example.com", Password: "whiskers99", ConfirmPassword: "whiskers98", FirstName: "A"})
	assert.ErrorIs(t, err, user.ErrPasswordMismatch)

	_, err = svc.Register(&user.RegisterRequest{Email: "a@example.com", Password: "short", ConfirmPassword: "short", FirstName: "A"})
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestRefreshToken(t *testing.T) {
	svc := newService(t)
	res := register(t, svc, "ref@example.com")

	refreshed, err := svc.RefreshToken(res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, refreshed.User.ID)

	_, err = svc.RefreshToken(res.AccessToken)
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	profile, err := svc.GetProfile(res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nia", profile.FullName())

	_, err = svc.GetProfile(999)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
