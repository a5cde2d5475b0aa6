// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/discovery/internal/metrics"
	"github.com/tomtom215/discovery/internal/models"
)

// Guarded bounds every call to the wrapped Backend with a timeout and
// a circuit breaker. A rejected call fails fast so the caller can fall back.
type Guarded struct {
	backend Backend
	breaker *gobreaker.CircuitBreaker[interface{}]
	name    string
	timeout time.Duration
}

// NewGuarded wraps backend. A zero timeout disables the per-call deadline.
func NewGuarded(backend Backend, cfg BreakerConfig, timeout time.Duration) *Guarded {
	return &Guarded{
		backend: backend,
		breaker: NewCircuitBreaker(cfg),
		name:    cfg.Name,
		timeout: timeout,
	}
}

// State returns the breaker state name.
func (g *Guarded) State() string {
	return CircuitBreakerState(g.breaker)
}

func (g *Guarded) Trending(ctx context.Context, limit int) ([]models.ContentRecord, error) {
	return g.list(ctx, func(ctx context.Context) ([]models.ContentRecord, error) {
		return g.backend.Trending(ctx, limit)
	})
}

func (g *Guarded) Recommend(ctx context.Context, pref *models.UserPreference, limit int) ([]models.ContentRecord, error) {
	return g.list(ctx, func(ctx context.Context) ([]models.ContentRecord, error) {
		return g.backend.Recommend(ctx, pref, limit)
	})
}

func (g *Guarded) Search(ctx context.Context, q models.SearchQuery, limit int) ([]models.ContentRecord, error) {
	return g.list(ctx, func(ctx context.Context) ([]models.ContentRecord, error) {
		return g.backend.Search(ctx, q, limit)
	})
}

func (g *Guarded) Similar(ctx context.Context, ref *models.ContentRecord, limit int) ([]models.ContentRecord, error) {
	return g.list(ctx, func(ctx context.Context) ([]models.ContentRecord, error) {
		return g.backend.Similar(ctx, ref, limit)
	})
}

func (g *Guarded) Get(ctx context.Context, contentID string) (*models.ContentRecord, error) {
	v, err := g.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return g.backend.Get(ctx, contentID)
	})
	if err != nil {
		return nil, err
	}
	rec, ok := v.(*models.ContentRecord)
	if !ok || rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (g *Guarded) list(ctx context.Context, fn func(context.Context) ([]models.ContentRecord, error)) ([]models.ContentRecord, error) {
	v, err := g.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return nil, err
	}
	out, _ := v.([]models.ContentRecord)
	if out == nil {
		out = []models.ContentRecord{}
	}
	return out, nil
}

func (g *Guarded) execute(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	v, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return fn(callCtx)
	})

	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		metrics.RecordCircuitBreakerRequest(g.name, "success")
	case IsBreakerRejection(err):
		metrics.RecordCircuitBreakerRequest(g.name, "rejected")
		return nil, fmt.Errorf("%s unavailable: %w", g.name, err)
	default:
		metrics.RecordCircuitBreakerRequest(g.name, "failure")
	}
	return v, err
}

var _ Backend = (*Guarded)(nil)
