// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package testinfra provides container helpers for integration tests.
//
// Everything here is behind the integration build tag and uses testcontainers-go:
//
//	go test -tags integration ./internal/cache/...
//
// # Redis Container
//
// RedisContainer backs the cache package's Redis backend tests:
//
//	func TestRedisBackend(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis)
//	    // use redis.Addr
//	}
//
// Tests are skipped when Docker is unavailable.
package testinfra
