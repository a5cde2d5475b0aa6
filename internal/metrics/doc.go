// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

/*
Package metrics provides Prometheus metrics for the discovery service.

All collectors are registered on the default registry through promauto and are
exposed on the ops server at /metrics:

	curl http://localhost:8090/metrics

# Available Metrics

Cache:
  - discovery_cache_hits_total, discovery_cache_misses_total
  - discovery_cache_invalidations_total{namespace}
  - discovery_cache_tracked_keys: keys in the namespace index (gauge)

Query engine:
  - discovery_query_duration_seconds{operation,source}
    source is one of cache, primary, replica, trending, empty
  - discovery_query_fallbacks_total{operation,to}

Primary search breaker:
  - discovery_circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - discovery_circuit_breaker_requests_total{name,result}

Ingestion:
  - discovery_ingest_events_total{event}
  - discovery_ingest_failures_total{stage}: decode, validate, replica, index

Commands:
  - discovery_commands_total{command,code}
  - discovery_command_duration_seconds{command}

Callers use the Record* helpers rather than touching collectors directly.
*/
package metrics
