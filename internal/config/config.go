package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth (optional; endpoints are open when unset)
	APIKey string

	// Layout
	PageCapacity int
	BlockSpacing int

	// Edit loop
	MaxSettlePasses int

	// Upload limits
	MaxUploadBytes int64

	// Session store
	SessionTTL      time.Duration
	CleanupInterval time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("PAGEMILL_API_KEY"),

		PageCapacity: envInt("PAGE_CAPACITY", 1200),
		BlockSpacing: envInt("BLOCK_SPACING", 2),

		MaxSettlePasses: envInt("MAX_SETTLE_PASSES", 1024),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		SessionTTL:      envDuration("SESSION_TTL", 4*time.Hour),
		CleanupInterval: envDuration("CLEANUP_INTERVAL", 5*time.Minute),
	}

	if cfg.PageCapacity <= 0 {
		cfg.PageCapacity = 1200
	}
	if cfg.BlockSpacing < 0 {
		cfg.BlockSpacing = 0
	}
	if cfg.MaxSettlePasses <= 0 {
		cfg.MaxSettlePasses = 1024
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 4 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PageCapacity <= c.BlockSpacing {
		return fmt.Errorf("PAGE_CAPACITY (%d) must exceed BLOCK_SPACING (%d)", c.PageCapacity, c.BlockSpacing)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
