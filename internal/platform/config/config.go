// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration that is read once at startup and
// treated as immutable for the process lifetime.
type Config struct {
	ForbiddenSymbols []string      // Symbols that must never be queryable
	CSVDir           string        // Directory holding *_values.csv import files
	BatchCron        string        // Cron spec for the scheduled import
	RateLimit        int           // Allowed requests per window, per client
	RateWindow       time.Duration // Fixed rate-limit window
}

// LoadConfig loads configuration from environment variables.
// FORBIDDEN_SYMBOLS is a comma separated list (e.g. "SHIB,DOGE").
func LoadConfig() Config {
	return Config{
		ForbiddenSymbols: splitSymbols(os.Getenv("FORBIDDEN_SYMBOLS")),
		CSVDir:           envOr("CSV_DIR", "./data"),
		BatchCron:        envOr("BATCH_CRON", "0 1 * * *"),
		RateLimit:        envIntOr("RATE_LIMIT", 60),
		RateWindow:       envDurationOr("RATE_WINDOW", time.Minute),
	}
}

func splitSymbols(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
