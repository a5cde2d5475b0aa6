// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package config loads the discovery service configuration with koanf.
//
// Sources are layered with later ones taking precedence:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file found via CONFIG_PATH or DefaultConfigPaths
//  3. Environment variables listed in envMappings
//
// Only mapped variables are read so unrelated process environment never leaks
// into configuration. Comma separated values are accepted for slice fields:
//
//	NATS_STREAM_SUBJECTS=content.created,content.updated
//
// Example YAML:
//
//	cache:
//	  backend: redis
//	  ttl: 300s
//	  redis_addr: redis:6379
//	search:
//	  index_path: /data/search.bleve
//	  timeout: 1500ms
//	query:
//	  max_limit: 50
package config
