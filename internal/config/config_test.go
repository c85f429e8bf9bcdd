package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"PORT", "DATABASE_URL", "JWT_SECRET", "TOKEN_TTL_HOURS", "COOKIE_SECURE",
	"FRONTEND_URL", "ALLOWED_ORIGINS", "REDIS_URL", "RATE_LIMIT_USER", "RATE_LIMIT_ANON",
	"TIMEZONE", "TAG_PRUNE_AT", "DEFAULT_CATEGORY", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "todo_tracker.db", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 1000, cfg.RateLimitUser)
	assert.Equal(t, 50, cfg.RateLimitAnon)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "03:30", cfg.TagPruneAt)
	assert.True(t, cfg.PruningEnabled())
	assert.Equal(t, "General", cfg.DefaultCategory)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("RATE_LIMIT_USER", "10")
	t.Setenv("RATE_LIMIT_ANON", "-3")
	t.Setenv("TAG_PRUNE_AT", "OFF")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"https://app.example.com", "https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, 10, cfg.RateLimitUser)
	assert.Equal(t, 50, cfg.RateLimitAnon)
	assert.False(t, cfg.PruningEnabled())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")
	_, err = Load()
	assert.ErrorContains(t, err, "TIMEZONE")

	t.Setenv("TIMEZONE", "")
	t.Setenv("LOG_LEVEL", "chatty")
	_, err = Load()
	assert.ErrorContains(t, err, "LOG_LEVEL")
}
