package config_test

import (
	"testing"
	"time"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PAYMENT_CURRENCY", "")
	t.Setenv("SESSION_COOKIE_NAME", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.Equal(t, "session_id", cfg.Session.CookieName)
	assert.True(t, cfg.IsDevelopment())
	assert.Contains(t, cfg.GetDatabaseDSN(), "host=localhost")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/shop.db")
	t.Setenv("JWT_ACCESS_EXPIRE", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/tmp/shop.db", cfg.GetDatabaseDSN())
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = config.Load()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
