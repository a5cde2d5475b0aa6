// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package cache provides the query result cache of the discovery service.
//
// The storage Backend deletes only by exact key. TrackedCache keeps a side
// index of live keys per namespace so that a whole family of results (every
// trending list, one user's recommendation lists) can be invalidated when
// content changes:
//
//	mem, err := cache.NewMemoryBackend(50000)
//	...
//	c := cache.NewTracked(mem, cache.TrackedConfig{})
//	c.SetTracked(ctx, cache.TrendingKey(10), data, cache.NamespaceTrending)
//	c.InvalidateNamespace(ctx, cache.NamespaceTrending)
//
// Two backends are available: MemoryBackend (ristretto) for a single instance
// and RedisBackend for a shared cache. The namespace index itself is in-process.
package cache
