// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/discovery/config.yaml",
	"/etc/discovery/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8090,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Backend:       "memory",
			TTL:           300 * time.Second,
			PruneInterval: time.Minute,
			MaxEntries:    50000,
			RedisAddr:     "127.0.0.1:6379",
		},
		Database: DatabaseConfig{
			Path:      "/data/discovery.duckdb",
			MaxMemory: "1GB",
		},
		Search: SearchConfig{
			Enabled:                 true,
			IndexPath:               "/data/search.bleve",
			Timeout:                 2 * time.Second,
			BreakerMaxRequests:      3,
			BreakerInterval:         30 * time.Second,
			BreakerTimeout:          10 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Preference: PreferenceConfig{
			Path:    "/data/preferences",
			LRUSize: 10000,
		},
		NATS: NATSConfig{
			Enabled:         true,
			URL:             "nats://127.0.0.1:4222",
			EmbeddedServer:  true,
			Host:            "127.0.0.1",
			Port:            4222,
			StoreDir:        "/data/nats/jetstream",
			MaxMemory:       256 << 20,
			MaxStore:        2 << 30,
			StreamName:      "CONTENT",
			StreamSubjects:  []string{"content.>"},
			StreamMaxAge:    7 * 24 * time.Hour,
			DurableName:     "discovery-ingest",
			QueueGroup:      "discovery",
			Subscribers:     1,
			AckWait:         30 * time.Second,
			CloseTimeout:    30 * time.Second,
			CommandPrefix:   "discovery.cmd",
			CommandQueue:    "discovery-commands",
			CommandDeadline: 5 * time.Second,
			CommandRateLimits: map[string]int{
				"search_content":      100,
				"manual_search":       100,
				"get_trending":        100,
				"get_categories":      100,
				"get_similar":         100,
				"get_recommendations": 50,
				"update_preferences":  20,
				"record_interaction":  20,
			},
			CommandRateWindow: time.Minute,
		},
		Query: QueryConfig{
			DefaultLimit:       10,
			MaxLimit:           50,
			ManualDefaultLimit: 20,
			ManualMaxLimit:     100,
			SearchLimit:        20,
		},
	}
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	return defaultConfig()
}

// Load is the entry point used by main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadWithKoanf layers configuration sources, later ones winning:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. mapped environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings from env.
var sliceConfigPaths = []string{
	"nats.stream_subjects",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps flat environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"cache_backend":        "cache.backend",
	"cache_ttl":            "cache.ttl",
	"cache_prune_interval": "cache.prune_interval",
	"cache_max_entries":    "cache.max_entries",
	"redis_addr":           "cache.redis_addr",
	"redis_db":             "cache.redis_db",
	"redis_password":       "cache.redis_password",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"search_enabled":           "search.enabled",
	"search_index_path":        "search.index_path",
	"search_timeout":           "search.timeout",
	"search_breaker_threshold": "search.breaker_failure_threshold",
	"search_breaker_timeout":   "search.breaker_timeout",

	"preference_path":     "preference.path",
	"preference_lru_size": "preference.lru_size",

	"nats_enabled":             "nats.enabled",
	"nats_url":                 "nats.url",
	"nats_embedded":            "nats.embedded_server",
	"nats_port":                "nats.port",
	"nats_store_dir":           "nats.store_dir",
	"nats_stream_name":         "nats.stream_name",
	"nats_stream_subjects":     "nats.stream_subjects",
	"nats_durable_name":        "nats.durable_name",
	"nats_queue_group":         "nats.queue_group",
	"nats_subscribers":         "nats.subscribers",
	"nats_command_prefix":      "nats.command_prefix",
	"nats_command_deadline":    "nats.command_deadline",
	"nats_command_rate_window": "nats.command_rate_window",

	"query_default_limit":        "query.default_limit",
	"query_max_limit":            "query.max_limit",
	"query_manual_default_limit": "query.manual_default_limit",
	"query_manual_max_limit":     "query.manual_max_limit",
	"query_search_limit":         "query.search_limit",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
