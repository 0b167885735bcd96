package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}
	if c.Journey.Port < 1 || c.Journey.Port > 65535 {
		errs = append(errs, fmt.Sprintf("JOURNEY_PORT must be 1-65535, got %d", c.Journey.Port))
	}

	// Memory service
	switch c.Memory.Driver {
	case MemoryDriverHTTP:
		if u, err := url.Parse(c.Memory.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("MEMORY_URL must be an absolute URL, got %q", c.Memory.URL))
		}
	case MemoryDriverInMemory:
		slog.Warn("MEMORY_DRIVER is inmemory: reading history is lost on restart")
	default:
		errs = append(errs, fmt.Sprintf("MEMORY_DRIVER must be http or inmemory, got %q", c.Memory.Driver))
	}
	if c.Memory.ReadTimeout <= 0 {
		errs = append(errs, "MEMORY_READ_TIMEOUT must be positive")
	}
	if c.Memory.WriteTimeout <= 0 {
		errs = append(errs, "MEMORY_WRITE_TIMEOUT must be positive")
	}
	if c.Memory.WriteRate < 0 {
		errs = append(errs, "MEMORY_WRITE_RATE must not be negative")
	}

	// Journey storage
	switch c.Journey.Driver {
	case JourneyDriverPostgres, JourneyDriverRedis, JourneyDriverInMemory:
	default:
		errs = append(errs, fmt.Sprintf("JOURNEY_DRIVER must be postgres, redis or inmemory, got %q", c.Journey.Driver))
	}
	if c.Journey.MaxEntries < 1 {
		errs = append(errs, "JOURNEY_MAX_ENTRIES must be positive")
	}

	// Rate limit
	if c.RateLimit.TurnMaxRequests < 1 || c.RateLimit.TurnWindowSec < 1 {
		errs = append(errs, "RATELIMIT_TURN_MAX and RATELIMIT_TURN_WINDOW must be positive")
	}

	// Logging
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be text or json, got %q", c.Log.Format))
	}

	// NATS: warn only
	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty: learning events will not be published")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
