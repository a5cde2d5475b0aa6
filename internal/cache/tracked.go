// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package cache

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/metrics"
)

// DefaultTTL is applied to every tracked entry unless configured otherwise.
const DefaultTTL = 300 * time.Second

// TrackedConfig configures a TrackedCache.
type TrackedConfig struct {
	TTL           time.Duration
	PruneInterval time.Duration
}

// TrackedCache layers namespace invalidation over an exact-key Backend.
//
// Every SetTracked registers its key, with its expiry, in the live-key set of
// each given namespace. InvalidateNamespace walks that set and deletes exactly
// those keys. Plain Set writes bypass the index. An index entry whose TTL has
// lapsed is harmless and is removed by Prune.
//
// Backend failures never surface: a failed Get is a miss, and failed writes
// and deletes are logged and counted.
type TrackedCache struct {
	backend       Backend
	ttl           time.Duration
	pruneInterval time.Duration

	mu    sync.Mutex
	index map[string]map[string]time.Time // namespace -> key -> expiry

	now func() time.Time
}

// NewTracked wraps backend. Zero config values fall back to DefaultTTL and a
// one minute prune interval.
func NewTracked(backend Backend, cfg TrackedConfig) *TrackedCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = time.Minute
	}
	return &TrackedCache{
		backend:       backend,
		ttl:           cfg.TTL,
		pruneInterval: cfg.PruneInterval,
		index:         make(map[string]map[string]time.Time),
		now:           time.Now,
	}
}

// TTL returns the fixed entry lifetime.
func (c *TrackedCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the value and true on a hit.
func (c *TrackedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			metrics.RecordCacheBackendError("get")
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache get failed, treating as miss")
		}
		metrics.RecordCacheMiss()
		return nil, false
	}
	metrics.RecordCacheHit()
	return data, true
}

// SetTracked writes value with the fixed TTL and registers key under every
// namespace given. A failed write registers nothing.
func (c *TrackedCache) SetTracked(ctx context.Context, key string, value []byte, namespaces ...string) {
	if err := c.backend.Set(ctx, key, value, c.ttl); err != nil {
		metrics.RecordCacheBackendError("set")
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache set failed")
		return
	}

	expiry := c.now().Add(c.ttl)
	c.mu.Lock()
	for _, ns := range namespaces {
		keys, ok := c.index[ns]
		if !ok {
			keys = make(map[string]time.Time)
			c.index[ns] = keys
		}
		keys[key] = expiry
	}
	total := c.countLocked()
	c.mu.Unlock()

	metrics.SetCacheTrackedKeys(total)
}

// Set writes value with the fixed TTL without registering it in any namespace.
func (c *TrackedCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.backend.Set(ctx, key, value, c.ttl); err != nil {
		metrics.RecordCacheBackendError("set")
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache set failed")
	}
}

// InvalidateNamespace deletes every key tracked under namespace and clears the set.
// It returns the number of keys deleted.
func (c *TrackedCache) InvalidateNamespace(ctx context.Context, namespace string) int {
	c.mu.Lock()
	tracked := c.index[namespace]
	delete(c.index, namespace)
	total := c.countLocked()
	c.mu.Unlock()

	metrics.SetCacheTrackedKeys(total)
	if len(tracked) == 0 {
		return 0
	}

	keys := make([]string, 0, len(tracked))
	for key := range tracked {
		keys = append(keys, key)
	}
	if err := c.backend.Delete(ctx, keys...); err != nil {
		metrics.RecordCacheBackendError("delete")
		logging.Ctx(ctx).Warn().Err(err).Str("namespace", namespace).Int("keys", len(keys)).
			Msg("Cache invalidation failed, entries expire by TTL")
	}

	metrics.RecordCacheInvalidation(NamespaceKind(namespace), len(keys))
	logging.Ctx(ctx).Debug().Str("namespace", namespace).Int("keys", len(keys)).Msg("Cache namespace invalidated")
	return len(keys)
}

// Prune drops index entries whose TTL has lapsed and returns how many were removed.
func (c *TrackedCache) Prune() int {
	now := c.now()
	pruned := 0

	c.mu.Lock()
	for ns, keys := range c.index {
		for key, expiry := range keys {
			if !now.Before(expiry) {
				delete(keys, key)
				pruned++
			}
		}
		if len(keys) == 0 {
			delete(c.index, ns)
		}
	}
	total := c.countLocked()
	c.mu.Unlock()

	metrics.SetCacheTrackedKeys(total)
	if pruned > 0 {
		metrics.RecordCachePrune(pruned)
	}
	return pruned
}

// TrackedKeys returns the sorted keys currently registered under namespace.
func (c *TrackedCache) TrackedKeys(namespace string) []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.index[namespace]))
	for key := range c.index[namespace] {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	slices.Sort(keys)
	return keys
}

// Serve runs the prune janitor until ctx is done. It implements suture.Service.
func (c *TrackedCache) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := c.Prune(); n > 0 {
				logging.Debug().Int("pruned", n).Msg("Pruned lapsed cache index entries")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (c *TrackedCache) String() string {
	return "cache-janitor"
}

// Close closes the backend.
func (c *TrackedCache) Close() error {
	return c.backend.Close()
}

func (c *TrackedCache) countLocked() int {
	n := 0
	for _, keys := range c.index {
		n += len(keys)
	}
	return n
}

// GetJSON decodes a cached value into T. A decode failure is a miss.
func GetJSON[T any](ctx context.Context, c *TrackedCache, key string) (T, bool) {
	var out T
	data, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		var zero T
		return zero, false
	}
	return out, true
}

// SetTrackedJSON encodes value and writes it through SetTracked.
func SetTrackedJSON(ctx context.Context, c *TrackedCache, key string, value interface{}, namespaces ...string) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache value not encodable, skipping")
		return
	}
	c.SetTracked(ctx, key, data, namespaces...)
}
