// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query sources reported by QueryDuration.
const (
	SourceCache    = "cache"
	SourcePrimary  = "primary"
	SourceReplica  = "replica"
	SourceTrending = "trending"
	SourceEmpty    = "empty"
)

var (
	// Replica Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_duckdb_query_duration_seconds",
			Help:    "Duration of content replica queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_duckdb_query_errors_total",
			Help: "Total number of content replica query errors",
		},
		[]string{"operation"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_cache_hits_total",
			Help: "Total number of query cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_cache_misses_total",
			Help: "Total number of query cache misses",
		},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_cache_invalidations_total",
			Help: "Total number of namespace invalidations",
		},
		[]string{"namespace"}, // namespace kind, user and content suffixes stripped
	)

	CacheInvalidatedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_cache_invalidated_keys_total",
			Help: "Total number of cache keys deleted by namespace invalidation",
		},
	)

	CacheBackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_cache_backend_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"operation"}, // get, set, delete
	)

	CacheTrackedKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "discovery_cache_tracked_keys",
			Help: "Current number of keys registered in the namespace index",
		},
	)

	CachePrunedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_cache_pruned_keys_total",
			Help: "Total number of lapsed keys pruned from the namespace index",
		},
	)

	// Query Engine Metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_query_duration_seconds",
			Help:    "Query engine latency by operation and result source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "source"},
	)

	QueryFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_query_fallbacks_total",
			Help: "Total number of queries served by a fallback after a backend failure",
		},
		[]string{"operation", "to"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "discovery_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Ingestion Metrics
	IngestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_ingest_events_total",
			Help: "Total number of content events applied",
		},
		[]string{"event"}, // content_created, content_updated
	)

	IngestFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_ingest_failures_total",
			Help: "Total number of content events dropped or partially applied",
		},
		[]string{"stage"}, // decode, validate, replica, index
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_ingest_duration_seconds",
			Help:    "Duration of content event processing",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_events_published_total",
			Help: "Total number of content events published to NATS",
		},
		[]string{"topic", "result"},
	)

	// Preference Metrics
	PreferenceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_preference_operations_total",
			Help: "Total number of preference operations",
		},
		[]string{"operation", "result"},
	)

	// Command Metrics
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_commands_total",
			Help: "Total number of dispatched commands",
		},
		[]string{"command", "code"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_command_duration_seconds",
			Help:    "Command dispatch latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"command"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "discovery_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a replica query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHits.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMisses.Inc()
}

// RecordCacheInvalidation records one namespace invalidation that deleted keys entries.
func RecordCacheInvalidation(namespaceKind string, keys int) {
	CacheInvalidations.WithLabelValues(namespaceKind).Inc()
	CacheInvalidatedKeys.Add(float64(keys))
}

// RecordCacheBackendError records a failed backend operation.
func RecordCacheBackendError(operation string) {
	CacheBackendErrors.WithLabelValues(operation).Inc()
}

// SetCacheTrackedKeys updates the tracked key gauge
func SetCacheTrackedKeys(n int) {
	CacheTrackedKeys.Set(float64(n))
}

// RecordCachePrune records keys dropped by a prune pass
func RecordCachePrune(pruned int) {
	CachePrunedKeys.Add(float64(pruned))
}

// RecordQuery records query latency for the source that produced the result
func RecordQuery(operation, source string, duration time.Duration) {
	QueryDuration.WithLabelValues(operation, source).Observe(duration.Seconds())
}

// RecordQueryFallback records a degraded query
func RecordQueryFallback(operation, to string) {
	QueryFallbacks.WithLabelValues(operation, to).Inc()
}

// SetCircuitBreakerState sets the numeric state gauge (0=closed, 1=half-open, 2=open)
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest records a request outcome: success, failure or rejected
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordCircuitBreakerTransition records a state change
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordIngestEvent records an applied content event
func RecordIngestEvent(event string, duration time.Duration) {
	IngestEvents.WithLabelValues(event).Inc()
	IngestDuration.Observe(duration.Seconds())
}

// RecordIngestFailure records an ingestion failure at a stage
func RecordIngestFailure(stage string) {
	IngestFailures.WithLabelValues(stage).Inc()
}

// RecordEventPublished records a publish attempt on topic
func RecordEventPublished(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordPreferenceOperation records a preference tracker operation
func RecordPreferenceOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	PreferenceOperations.WithLabelValues(operation, result).Inc()
}

// RecordCommand records a dispatched command and its reply code ("ok" on success)
func RecordCommand(command, code string, duration time.Duration) {
	CommandsTotal.WithLabelValues(command, code).Inc()
	CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}
