// Package config loads chessclock settings from environment variables.
// All fields have sensible defaults if environment variables are not set.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration loaded from environment variables.
type Config struct {
	// LogLevel controls logging verbosity: "debug", "info", "warn", "error" (default: "info")
	LogLevel string

	// LogDir is the directory for log files (default: ./logs)
	LogDir string

	// NotifyURLs are shoutrrr service URLs that receive flag-fall notifications.
	// Comma separated in CHESSCLOCK_NOTIFY_URLS; empty disables sending.
	NotifyURLs []string

	// NotifyThrottleSeconds is the minimum gap between notifications of the
	// same event type (default: 30, 0 disables throttling)
	NotifyThrottleSeconds int
}

// Global singleton
var cfg *Config

// Load reads configuration from environment variables with sensible defaults.
// Should be called once at startup by the embedding application.
func Load() *Config {
	cfg = &Config{
		LogLevel:              getEnvOrDefault("CHESSCLOCK_LOG_LEVEL", "info"),
		LogDir:                getEnvOrDefault("CHESSCLOCK_LOG_DIR", "./logs"),
		NotifyURLs:            splitList(os.Getenv("CHESSCLOCK_NOTIFY_URLS")),
		NotifyThrottleSeconds: getEnvIntOrDefault("CHESSCLOCK_NOTIFY_THROTTLE", 30),
	}
	return cfg
}

// Get returns the current configuration, loading it on first use.
func Get() *Config {
	if cfg == nil {
		return Load()
	}
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
