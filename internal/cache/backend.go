// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Backend.Get on a miss or an expired entry.
var ErrNotFound = errors.New("cache: key not found")

// Backend is an exact-key TTL store. It has no pattern or prefix deletion;
// TrackedCache supplies namespace invalidation on top of it.
type Backend interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases backend resources.
	Close() error
}
