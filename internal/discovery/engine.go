// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/discovery/internal/cache"
	"github.com/tomtom215/discovery/internal/config"
	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/metrics"
	"github.com/tomtom215/discovery/internal/models"
	"github.com/tomtom215/discovery/internal/preference"
	"github.com/tomtom215/discovery/internal/search"
)

// Operation names used in metrics and logs.
const (
	OpTrending        = "trending"
	OpRecommendations = "recommendations"
	OpSearch          = "search"
	OpSimilar         = "similar"
	OpManualSearch    = "manual_search"
	OpCategories      = "categories"
)

// Replica is the durable fallback. It answers every ranked query plus the
// replica-only manual search and category listing.
type Replica interface {
	search.Backend
	ManualSearch(ctx context.Context, req models.ManualSearchRequest) (*models.ManualSearchResult, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

// PreferenceSource reads stored preferences. preference.ErrNotFound means
// the user has none.
type PreferenceSource interface {
	Get(ctx context.Context, userID string) (*models.UserPreference, error)
}

// Engine answers discovery queries: cache first, then the primary backend,
// then the replica. Recommendations additionally fall back to trending.
//
// A primary failure is logged and counted, never returned.
type Engine struct {
	cache   *cache.TrackedCache
	primary search.Backend
	replica Replica
	prefs   PreferenceSource
	lookup  preference.ContentLookup
	limits  config.QueryConfig
}

// NewEngine wires the engine. primary may be nil to run on the replica alone.
func NewEngine(tc *cache.TrackedCache, primary search.Backend, replica Replica, prefs PreferenceSource, limits config.QueryConfig) *Engine {
	lookup := preference.FallbackLookup{replica}
	if primary != nil {
		lookup = preference.FallbackLookup{primary, replica}
	}
	return &Engine{
		cache:   tc,
		primary: primary,
		replica: replica,
		prefs:   prefs,
		lookup:  lookup,
		limits:  limits,
	}
}

// Lookup resolves a contentId through the primary then the replica.
func (e *Engine) Lookup() preference.ContentLookup {
	return e.lookup
}

// ClampLimit applies the default to non-positive limits and caps the rest.
func (e *Engine) ClampLimit(limit int) int {
	if limit <= 0 {
		return e.limits.DefaultLimit
	}
	if limit > e.limits.MaxLimit {
		return e.limits.MaxLimit
	}
	return limit
}

// GetTrending returns published records newest first.
func (e *Engine) GetTrending(ctx context.Context, limit int) ([]models.ContentRecord, error) {
	start := time.Now()
	limit = e.ClampLimit(limit)
	key := cache.TrendingKey(limit)

	if out, ok := cache.GetJSON[[]models.ContentRecord](ctx, e.cache, key); ok {
		metrics.RecordQuery(OpTrending, metrics.SourceCache, time.Since(start))
		return out, nil
	}

	out, source, err := e.resolve(ctx, OpTrending, func(ctx context.Context, b search.Backend) ([]models.ContentRecord, error) {
		return b.Trending(ctx, limit)
	})
	if err != nil {
		return nil, err
	}

	e.populate(ctx, key, out, cache.NamespaceTrending)
	metrics.RecordQuery(OpTrending, source, time.Since(start))
	return out, nil
}

// GetRecommendations ranks unwatched records by the user's favorites. A user
// with no stored preference, or one without any signal, gets exactly the
// trending result.
func (e *Engine) GetRecommendations(ctx context.Context, userID string, limit int) ([]models.ContentRecord, error) {
	start := time.Now()
	limit = e.ClampLimit(limit)

	pref, err := e.prefs.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, preference.ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("Preference read failed, serving trending")
		}
		return e.GetTrending(ctx, limit)
	}
	if !pref.HasSignals() {
		return e.GetTrending(ctx, limit)
	}

	key := cache.RecommendationsKey(userID, limit)
	if out, ok := cache.GetJSON[[]models.ContentRecord](ctx, e.cache, key); ok {
		metrics.RecordQuery(OpRecommendations, metrics.SourceCache, time.Since(start))
		return out, nil
	}

	out, source, err := e.resolve(ctx, OpRecommendations, func(ctx context.Context, b search.Backend) ([]models.ContentRecord, error) {
		return b.Recommend(ctx, pref, limit)
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("Recommendation backends failed, serving trending")
		metrics.RecordQueryFallback(OpRecommendations, metrics.SourceTrending)
		return e.GetTrending(ctx, limit)
	}

	e.populate(ctx, key, out, cache.UserRecommendationsNamespace(userID), cache.NamespaceRecommendations)
	metrics.RecordQuery(OpRecommendations, source, time.Since(start))
	return out, nil
}

// Search matches keywords against title, description and tags. Blank
// keywords return an empty result without touching any backend.
func (e *Engine) Search(ctx context.Context, q models.SearchQuery) ([]models.ContentRecord, error) {
	start := time.Now()
	q = q.Normalized()
	if q.Keywords == "" {
		metrics.RecordQuery(OpSearch, metrics.SourceEmpty, time.Since(start))
		return []models.ContentRecord{}, nil
	}
	limit := e.ClampLimit(e.limits.SearchLimit)
	key := cache.SearchKey(struct {
		models.SearchQuery
		Limit int `json:"limit"`
	}{q, limit})

	if out, ok := cache.GetJSON[[]models.ContentRecord](ctx, e.cache, key); ok {
		metrics.RecordQuery(OpSearch, metrics.SourceCache, time.Since(start))
		return out, nil
	}

	out, source, err := e.resolve(ctx, OpSearch, func(ctx context.Context, b search.Backend) ([]models.ContentRecord, error) {
		return b.Search(ctx, q, limit)
	})
	if err != nil {
		return nil, err
	}

	e.populate(ctx, key, out, cache.NamespaceSearch)
	metrics.RecordQuery(OpSearch, source, time.Since(start))
	return out, nil
}

// GetSimilar returns published records sharing a category or tag with the
// reference record. An unknown reference yields an empty result.
func (e *Engine) GetSimilar(ctx context.Context, contentID string, limit int) ([]models.ContentRecord, error) {
	start := time.Now()
	contentID = strings.TrimSpace(contentID)
	limit = e.ClampLimit(limit)
	key := cache.SimilarKey(contentID, limit)

	if out, ok := cache.GetJSON[[]models.ContentRecord](ctx, e.cache, key); ok {
		metrics.RecordQuery(OpSimilar, metrics.SourceCache, time.Since(start))
		return out, nil
	}

	ref, err := e.lookup.Get(ctx, contentID)
	if err != nil {
		if errors.Is(err, search.ErrNotFound) {
			metrics.RecordQuery(OpSimilar, metrics.SourceEmpty, time.Since(start))
			return []models.ContentRecord{}, nil
		}
		return nil, fmt.Errorf("lookup reference %s: %w", contentID, err)
	}

	out, source, err := e.resolve(ctx, OpSimilar, func(ctx context.Context, b search.Backend) ([]models.ContentRecord, error) {
		return b.Similar(ctx, ref, limit)
	})
	if err != nil {
		return nil, err
	}

	e.populate(ctx, key, out, cache.SimilarNamespace(contentID))
	metrics.RecordQuery(OpSimilar, source, time.Since(start))
	return out, nil
}

// ManualSearch runs a paginated filtered listing on the replica. The request
// is normalized first, so an unknown sort field silently becomes publishDate.
func (e *Engine) ManualSearch(ctx context.Context, req models.ManualSearchRequest) (*models.ManualSearchResult, error) {
	start := time.Now()
	req.Normalize(e.limits.ManualDefaultLimit, e.limits.ManualMaxLimit)

	res, err := e.replica.ManualSearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("manual search: %w", err)
	}
	metrics.RecordQuery(OpManualSearch, metrics.SourceReplica, time.Since(start))
	return res, nil
}

// GetCategories lists active categories ordered by name.
func (e *Engine) GetCategories(ctx context.Context) ([]models.Category, error) {
	start := time.Now()

	if out, ok := cache.GetJSON[[]models.Category](ctx, e.cache, cache.CategoriesKey); ok {
		metrics.RecordQuery(OpCategories, metrics.SourceCache, time.Since(start))
		return out, nil
	}

	out, err := e.replica.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	if out == nil {
		out = []models.Category{}
	}

	e.populate(ctx, cache.CategoriesKey, out, cache.NamespaceCategories)
	metrics.RecordQuery(OpCategories, metrics.SourceReplica, time.Since(start))
	return out, nil
}

// resolve runs call against the primary and falls back to the replica on
// any primary error. It returns the source that answered.
func (e *Engine) resolve(ctx context.Context, op string, call func(context.Context, search.Backend) ([]models.ContentRecord, error)) ([]models.ContentRecord, string, error) {
	if e.primary != nil {
		out, err := call(ctx, e.primary)
		if err == nil {
			return nonNil(out), metrics.SourcePrimary, nil
		}
		logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Msg("Primary search backend failed, falling back to replica")
		metrics.RecordQueryFallback(op, metrics.SourceReplica)
	}

	out, err := call(ctx, e.replica)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return nonNil(out), metrics.SourceReplica, nil
}

// populate writes a computed result. It runs detached from the caller's
// cancellation so an abandoned request still fills the cache.
func (e *Engine) populate(ctx context.Context, key string, value interface{}, namespaces ...string) {
	cache.SetTrackedJSON(context.WithoutCancel(ctx), e.cache, key, value, namespaces...)
}

func nonNil(in []models.ContentRecord) []models.ContentRecord {
	if in == nil {
		return []models.ContentRecord{}
	}
	return in
}
