// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/discovery/internal/cache"
	"github.com/tomtom215/discovery/internal/commands"
	"github.com/tomtom215/discovery/internal/config"
	"github.com/tomtom215/discovery/internal/database"
	"github.com/tomtom215/discovery/internal/discovery"
	"github.com/tomtom215/discovery/internal/ingest"
	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/preference"
	"github.com/tomtom215/discovery/internal/search"
)

// closer is a named shutdown step.
type closer struct {
	name string
	fn   func() error
}

// app holds the stores and the domain services built on them. It owns no
// goroutines; serve adds those under the supervisor.
type app struct {
	cfg *config.Config

	replica *database.DB
	index   *search.BleveBackend
	guarded *search.Guarded
	prefs   *preference.Store
	cache   *cache.TrackedCache
	redis   *cache.RedisBackend

	engine     *discovery.Engine
	tracker    *preference.Tracker
	ingest     *ingest.Service
	dispatcher *commands.Dispatcher

	closers []closer
}

// newApp opens every store and wires the domain services. On error anything
// already opened is closed.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.replica, err = database.New(&cfg.Database); err != nil {
		return nil, fmt.Errorf("open replica: %w", err)
	}
	a.onClose("content-replica", a.replica.Close)

	var (
		primary search.Backend
		indexer ingest.Indexer
	)
	if cfg.Search.Enabled {
		if a.index, err = search.OpenIndex(cfg.Search.IndexPath); err != nil {
			return nil, fmt.Errorf("open search index: %w", err)
		}
		a.onClose("search-index", a.index.Close)

		a.guarded = search.NewGuarded(a.index, breakerConfig(&cfg.Search), cfg.Search.Timeout)
		primary = a.guarded
		indexer = a.index
	} else {
		logging.Info().Msg("Primary search disabled, queries run on the replica")
	}

	if a.prefs, err = preference.OpenStore(cfg.Preference); err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	a.onClose("preference-store", a.prefs.Close)

	backend, err := a.openCacheBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.cache = cache.NewTracked(backend, cache.TrackedConfig{
		TTL:           cfg.Cache.TTL,
		PruneInterval: cfg.Cache.PruneInterval,
	})
	a.onClose("cache", a.cache.Close)
	if mem, ok := backend.(*cache.MemoryBackend); ok {
		a.onClose("cache-stats", func() error {
			s := mem.GetStats()
			logging.Info().
				Uint64("hits", s.Hits).
				Uint64("misses", s.Misses).
				Uint64("keys_evicted", s.KeysEvicted).
				Float64("hit_rate", mem.HitRate()).
				Msg("Memory cache statistics")
			return nil
		})
	}

	a.engine = discovery.NewEngine(a.cache, primary, a.replica, a.prefs, cfg.Query)
	a.tracker = preference.NewTracker(a.prefs, a.engine.Lookup(), a.cache)
	a.ingest = ingest.NewService(a.replica, indexer, a.cache)
	a.dispatcher = commands.NewDispatcher(a.engine, a.tracker)
	return a, nil
}

func (a *app) openCacheBackend(ctx context.Context) (cache.Backend, error) {
	if a.cfg.Cache.Backend != "redis" {
		mem, err := cache.NewMemoryBackend(a.cfg.Cache.MaxEntries)
		if err != nil {
			return nil, err
		}
		return mem, nil
	}

	rb, err := cache.NewRedisBackend(ctx, cache.RedisConfig{
		Addr:     a.cfg.Cache.RedisAddr,
		DB:       a.cfg.Cache.RedisDB,
		Password: a.cfg.Cache.RedisPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("open redis cache: %w", err)
	}
	a.redis = rb
	return rb, nil
}

func (a *app) onClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Close runs the shutdown steps in reverse order of registration.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			logging.Error().Err(err).Str("component", c.name).Msg("Close failed")
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
			continue
		}
		logging.Debug().Str("component", c.name).Msg("Closed")
	}
	a.closers = nil
	return errors.Join(errs...)
}

func breakerConfig(cfg *config.SearchConfig) search.BreakerConfig {
	bc := search.DefaultBreakerConfig("search-primary")
	if cfg.BreakerMaxRequests > 0 {
		bc.MaxRequests = cfg.BreakerMaxRequests
	}
	if cfg.BreakerInterval > 0 {
		bc.Interval = cfg.BreakerInterval
	}
	if cfg.BreakerTimeout > 0 {
		bc.Timeout = cfg.BreakerTimeout
	}
	if cfg.BreakerFailureThreshold > 0 {
		bc.FailureThreshold = cfg.BreakerFailureThreshold
	}
	return bc
}
