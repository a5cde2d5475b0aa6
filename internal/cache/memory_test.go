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
	"testing"
	"time"
)

func newTestMemory(t *testing.T, maxEntries int) *MemoryBackend {
	t.Helper()
	m, err := NewMemoryBackend(maxEntries)
	if err != nil {
		t.Fatalf("NewMemoryBackend: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func present(m *MemoryBackend, keys ...string) int {
	n := 0
	for _, k := range keys {
		if _, err := m.Get(context.Background(), k); err == nil {
			n++
		}
	}
	return n
}

func TestMemoryBackendBasicOperations(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	if err := m.Set(ctx, "key1", []byte("value1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := m.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get straight after Set: %v", err)
	}
	if string(value) != "value1" {
		t.Errorf("Expected value1, got %s", value)
	}

	if _, err := m.Get(ctx, "key2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for key2, got %v", err)
	}
}

func TestMemoryBackendOverwrite(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	_ = m.Set(ctx, "k", []byte("old"), time.Minute)
	_ = m.Set(ctx, "k", []byte("new"), time.Minute)

	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "new" {
		t.Errorf("Get = %q, %v; want new", got, err)
	}
}

func TestMemoryBackendCopiesValue(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf, time.Minute)
	buf[0] = 'z'

	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %s", got)
	}
}

func TestMemoryBackendExpiration(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	_ = m.Set(ctx, "short", []byte("v"), 50*time.Millisecond)
	_ = m.Set(ctx, "forever", []byte("v"), 0)

	if _, err := m.Get(ctx, "short"); err != nil {
		t.Error("Expected short to exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, err := m.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Error("Expected short to be expired")
	}
	if _, err := m.Get(ctx, "forever"); err != nil {
		t.Error("zero TTL should never expire")
	}
}

func TestMemoryBackendDelete(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	_ = m.Set(ctx, "a", []byte("1"), time.Minute)
	_ = m.Set(ctx, "b", []byte("2"), time.Minute)
	_ = m.Set(ctx, "c", []byte("3"), time.Minute)

	if err := m.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := present(m, "a", "b"); n != 0 {
		t.Errorf("%d deleted keys still readable", n)
	}
	if n := present(m, "c"); n != 1 {
		t.Error("untouched key was removed")
	}
}

func TestMemoryBackendMaxEntries(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 2)

	keys := []string{"first", "second", "third", "fourth"}
	for _, k := range keys {
		if err := m.Set(ctx, k, []byte(k), time.Hour); err != nil && !errors.Is(err, ErrSetDropped) {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	if n := present(m, keys...); n > 2 {
		t.Errorf("%d keys present, want at most 2", n)
	}
}

func TestMemoryBackendStats(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	_ = m.Set(ctx, "k", []byte("v"), time.Minute)
	_, _ = m.Get(ctx, "k")
	_, _ = m.Get(ctx, "missing")

	stats := m.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", stats)
	}
	if rate := m.HitRate(); rate != 50 {
		t.Errorf("HitRate = %v, want 50", rate)
	}
}

func TestMemoryBackendConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d_%d", id, j%10)
				_ = m.Set(ctx, key, []byte("v"), time.Minute)
				_, _ = m.Get(ctx, key)
				if j%7 == 0 {
					_ = m.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()

	var all []string
	for i := 0; i < 20; i++ {
		for j := 0; j < 10; j++ {
			all = append(all, fmt.Sprintf("key%d_%d", i, j))
		}
	}
	if n := present(m, all...); n > 100 {
		t.Errorf("%d keys present, exceeds max entries", n)
	}
}

func TestMemoryBackendCloseIdempotent(t *testing.T) {
	m, err := NewMemoryBackend(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}
