package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the API server.
type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	CookieSecure    bool
	AllowedOrigins  []string
	FrontendURL     string
	RedisURL        string
	RateLimitUser   int
	RateLimitAnon   int
	Location        *time.Location
	TagPruneAt      string
	DefaultCategory string
	LogLevel        slog.Level
	LogJSON         bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:            strings.TrimSpace(os.Getenv("PORT")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:        parseHours(os.Getenv("TOKEN_TTL_HOURS")),
		CookieSecure:    parseBool(os.Getenv("COOKIE_SECURE")),
		AllowedOrigins:  parseOrigins(os.Getenv("FRONTEND_URL"), os.Getenv("ALLOWED_ORIGINS")),
		FrontendURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("FRONTEND_URL")), "/"),
		RedisURL:        strings.TrimSpace(os.Getenv("REDIS_URL")),
		RateLimitUser:   parsePositive(os.Getenv("RATE_LIMIT_USER")),
		RateLimitAnon:   parsePositive(os.Getenv("RATE_LIMIT_ANON")),
		TagPruneAt:      strings.TrimSpace(os.Getenv("TAG_PRUNE_AT")),
		DefaultCategory: strings.TrimSpace(os.Getenv("DEFAULT_CATEGORY")),
		LogJSON:         strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "json"),
	}

	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "todo_tracker.db"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.RateLimitUser == 0 {
		cfg.RateLimitUser = 1000
	}
	if cfg.RateLimitAnon == 0 {
		cfg.RateLimitAnon = 50
	}
	if cfg.TagPruneAt == "" {
		cfg.TagPruneAt = "03:30"
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:5173"
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = "General"
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	loc, err := time.LoadLocation(envOr("TIMEZONE", "UTC"))
	if err != nil {
		return cfg, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// PruningEnabled reports whether the orphan tag job should run.
func (c Config) PruningEnabled() bool {
	return !strings.EqualFold(c.TagPruneAt, "off")
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseHours(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parsePositive(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

func parseOrigins(frontendURL, allowed string) []string {
	var origins []string
	if v := strings.TrimSpace(frontendURL); v != "" {
		origins = append(origins, v)
	}
	for _, origin := range strings.Split(allowed, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
