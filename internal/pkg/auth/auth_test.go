package auth

import (
	"testing"
	"time"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "pawverse-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough-123",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestJWTManager_IssueAndValidate(t *testing.T) {
	m := NewJWTManager(testConfig())

	pair, err := m.IssuePair(42, "ada@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.True(t, claims.IsAdmin)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, refresh.IsAdmin)
}

func TestJWTManager_RejectsWrongType(t *testing.T) {
	m := NewJWTManager(testConfig())

	pair, err := m.IssuePair(1, "a@example.com", false)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	pair, err := NewJWTManager(testConfig()).IssuePair(1, "a@example.com", false)
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "another-secret-key-that-is-long-enough-456"
	_, err = NewJWTManager(other).ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
}

func TestPasswordManager(t *testing.T) {
	p := NewPasswordManager(testConfig())

	hash, err := p.HashPassword("kibble2024")
	require.NoError(t, err)
	assert.NoError(t, p.VerifyPassword("kibble2024", hash))
	assert.Error(t, p.VerifyPassword("kibble2025", hash))

	for _, weak := range []string{"short1", "lettersonly", "1234567890"} {
		_, err := p.HashPassword(weak)
		assert.ErrorIs(t, err, ErrWeakPassword, weak)
	}
}
