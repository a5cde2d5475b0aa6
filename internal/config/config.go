// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package config

import "time"

// Config is the root configuration for the discovery service.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Cache      CacheConfig      `koanf:"cache"`
	Database   DatabaseConfig   `koanf:"database"`
	Search     SearchConfig     `koanf:"search"`
	Preference PreferenceConfig `koanf:"preference"`
	NATS       NATSConfig       `koanf:"nats"`
	Query      QueryConfig      `koanf:"query"`
}

// ServerConfig configures the operations HTTP server (/healthz, /readyz, /metrics).
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig configures the query result cache and its namespace index.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string `koanf:"backend"`

	// TTL applies to every tracked entry.
	TTL time.Duration `koanf:"ttl"`

	// PruneInterval is how often lapsed keys are dropped from the namespace index.
	PruneInterval time.Duration `koanf:"prune_interval"`

	// MaxEntries bounds the memory backend. 0 means unbounded.
	MaxEntries int `koanf:"max_entries"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPassword string `koanf:"redis_password"`
}

// DatabaseConfig configures the DuckDB content replica.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SearchConfig configures the primary full-text backend.
type SearchConfig struct {
	Enabled bool `koanf:"enabled"`

	// IndexPath is the bleve index directory. Empty keeps the index in memory.
	IndexPath string `koanf:"index_path"`

	// Timeout bounds every primary call before the replica takes over.
	Timeout time.Duration `koanf:"timeout"`

	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// PreferenceConfig configures the Badger preference store.
type PreferenceConfig struct {
	// Path is the badger directory. Empty runs in memory.
	Path string `koanf:"path"`

	// LRUSize is the number of preferences kept decoded in memory.
	LRUSize int `koanf:"lru_size"`
}

// NATSConfig configures event ingestion and the command responder.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	StreamName      string        `koanf:"stream_name"`
	StreamSubjects  []string      `koanf:"stream_subjects"`
	StreamMaxAge    time.Duration `koanf:"stream_max_age"`
	DurableName     string        `koanf:"durable_name"`
	QueueGroup      string        `koanf:"queue_group"`
	Subscribers     int           `koanf:"subscribers"`
	AckWait         time.Duration `koanf:"ack_wait"`
	CloseTimeout    time.Duration `koanf:"close_timeout"`
	CommandPrefix   string        `koanf:"command_prefix"`
	CommandQueue    string        `koanf:"command_queue"`
	CommandDeadline time.Duration `koanf:"command_deadline"`
	// CommandRateLimits caps each command at N requests per
	// CommandRateWindow on one replica. 0 or absent means unthrottled.
	CommandRateLimits map[string]int `koanf:"command_rate_limits"`
	CommandRateWindow time.Duration  `koanf:"command_rate_window"`
}

// QueryConfig holds the server-side clamps applied to every query.
type QueryConfig struct {
	DefaultLimit       int `koanf:"default_limit"`
	MaxLimit           int `koanf:"max_limit"`
	ManualDefaultLimit int `koanf:"manual_default_limit"`
	ManualMaxLimit     int `koanf:"manual_max_limit"`
	// SearchLimit is the fixed page size of keyword search, which takes no
	// caller limit.
	SearchLimit int `koanf:"search_limit"`
}
