// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateQuery()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: HTTP_PORT must be between 1 and 65535, got %d", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("%w: LOG_LEVEL %q is not a known level", ErrInvalidConfig, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: LOG_FORMAT must be json or console, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("%w: REDIS_ADDR is required when CACHE_BACKEND=redis", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: CACHE_BACKEND must be memory or redis, got %q", ErrInvalidConfig, c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: CACHE_TTL must be positive", ErrInvalidConfig)
	}
	if c.Cache.PruneInterval <= 0 {
		return fmt.Errorf("%w: CACHE_PRUNE_INTERVAL must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if !c.Search.Enabled {
		return nil
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("%w: SEARCH_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.Search.BreakerFailureThreshold == 0 {
		return fmt.Errorf("%w: SEARCH_BREAKER_THRESHOLD must be at least 1", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("%w: NATS_URL is required when the embedded server is disabled", ErrInvalidConfig)
	}
	if c.NATS.StreamName == "" || len(c.NATS.StreamSubjects) == 0 {
		return fmt.Errorf("%w: NATS stream name and subjects are required", ErrInvalidConfig)
	}
	if c.NATS.Subscribers < 1 {
		return fmt.Errorf("%w: NATS_SUBSCRIBERS must be at least 1", ErrInvalidConfig)
	}
	if c.NATS.CommandPrefix == "" {
		return fmt.Errorf("%w: NATS_COMMAND_PREFIX is required", ErrInvalidConfig)
	}
	for command, n := range c.NATS.CommandRateLimits {
		if n < 0 {
			return fmt.Errorf("%w: rate limit for %s must not be negative", ErrInvalidConfig, command)
		}
		if n > 0 && c.NATS.CommandRateWindow <= 0 {
			return fmt.Errorf("%w: NATS_COMMAND_RATE_WINDOW must be positive when command rate limits are set", ErrInvalidConfig)
		}
	}
	return nil
}

func (c *Config) validateQuery() error {
	q := c.Query
	if q.MaxLimit < 1 || q.ManualMaxLimit < 1 {
		return fmt.Errorf("%w: query max limits must be at least 1", ErrInvalidConfig)
	}
	if q.DefaultLimit < 1 || q.DefaultLimit > q.MaxLimit {
		return fmt.Errorf("%w: QUERY_DEFAULT_LIMIT must be between 1 and %d", ErrInvalidConfig, q.MaxLimit)
	}
	if q.ManualDefaultLimit < 1 || q.ManualDefaultLimit > q.ManualMaxLimit {
		return fmt.Errorf("%w: QUERY_MANUAL_DEFAULT_LIMIT must be between 1 and %d", ErrInvalidConfig, q.ManualMaxLimit)
	}
	if q.SearchLimit < 1 || q.SearchLimit > q.MaxLimit {
		return fmt.Errorf("%w: QUERY_SEARCH_LIMIT must be between 1 and %d", ErrInvalidConfig, q.MaxLimit)
	}
	return nil
}
