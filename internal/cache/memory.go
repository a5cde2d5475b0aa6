// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrSetDropped is returned when the admission policy refuses a value. The
// key simply stays a miss.
var ErrSetDropped = errors.New("cache: set dropped")

const (
	// unboundedEntries stands in for "no limit" when maxEntries is 0.
	unboundedEntries = 1 << 30
	// counters per admitted entry, as recommended for the TinyLFU sketch.
	countersPerEntry = 10
	maxCounters      = 1e7
	bufferItems      = 64
)

// Stats is a snapshot of backend counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	KeysAdded   uint64
	KeysEvicted uint64
}

// MemoryBackend is an in-process Backend over a ristretto cache. Every entry
// costs 1, so maxEntries bounds the key count. Expired entries read as
// misses and are reclaimed by ristretto's TTL sweep.
type MemoryBackend struct {
	cache     *ristretto.Cache[string, []byte]
	closeOnce sync.Once
}

// NewMemoryBackend creates a MemoryBackend holding at most maxEntries keys,
// or effectively unbounded when maxEntries is 0.
func NewMemoryBackend(maxEntries int) (*MemoryBackend, error) {
	maxCost := int64(maxEntries)
	if maxCost <= 0 {
		maxCost = unboundedEntries
	}
	counters := maxCost * countersPerEntry
	if counters > maxCounters {
		counters = maxCounters
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        counters,
		MaxCost:            maxCost,
		BufferItems:        bufferItems,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryBackend{cache: c}, nil
}

// Get returns the value for key or ErrNotFound.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Set stores a copy of value. A non-positive ttl never expires. Set waits for
// the write to be applied so a following Get observes it.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	if ttl < 0 {
		ttl = 0
	}
	if !m.cache.SetWithTTL(key, data, 1, ttl) {
		return ErrSetDropped
	}
	m.cache.Wait()
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.cache.Del(key)
	}
	return nil
}

// Close releases the cache. Calling it twice is a no-op.
func (m *MemoryBackend) Close() error {
	m.closeOnce.Do(m.cache.Close)
	return nil
}

// GetStats returns ristretto's counters.
func (m *MemoryBackend) GetStats() Stats {
	mt := m.cache.Metrics
	return Stats{
		Hits:        mt.Hits(),
		Misses:      mt.Misses(),
		KeysAdded:   mt.KeysAdded(),
		KeysEvicted: mt.KeysEvicted(),
	}
}

// HitRate returns hits as a percentage of lookups.
func (m *MemoryBackend) HitRate() float64 {
	return m.cache.Metrics.Ratio() * 100
}
