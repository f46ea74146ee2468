package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string
	Port        string
	Environment string

	// RapidAPI Twitter scraping
	RapidAPIKey  string
	RapidAPIHost string

	// Sentiment classification endpoint (optional; local heuristic when empty)
	SentimentAPIURL string
	SentimentAPIKey string

	// Admin routes bearer token
	AdminToken string

	// Background refresh interval for market snapshots
	RefreshInterval time.Duration
}

// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// devDatabaseURL is the fallback DSN for local development only.
const devDatabaseURL = "host=localhost user=postgres password=postgres dbname=coinpulse port=5432 sslmode=disable"

func Load() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", devDatabaseURL),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RapidAPIKey:  getEnv("RAPIDAPI_KEY", ""),
		RapidAPIHost: getEnv("RAPIDAPI_HOST", "twitter-api45.p.rapidapi.com"),

		SentimentAPIURL: getEnv("SENTIMENT_API_URL", ""),
		SentimentAPIKey: getEnv("SENTIMENT_API_KEY", ""),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		RefreshInterval: getDurationEnv("REFRESH_INTERVAL_SECONDS", 300),
	}
}

// Validate checks the values a running server cannot do without.
// Runs explicitly at startup instead of panicking at load time. The dev
// fallback DSN never leaves development.
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.DatabaseURL == "" || c.DatabaseURL == devDatabaseURL {
			return &ConfigError{Field: "DATABASE_URL", Reason: "must be set explicitly in production"}
		}
		if c.AdminToken == "" {
			return &ConfigError{Field: "ADMIN_TOKEN", Reason: "is required in production"}
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
