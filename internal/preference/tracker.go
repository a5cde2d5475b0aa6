// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package preference

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/discovery/internal/cache"
	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/models"
	"github.com/tomtom215/discovery/internal/search"
)

const lockStripes = 64

var (
	// ErrContentNotFound is returned by RecordInteraction when no lookup knows the content.
	ErrContentNotFound = errors.New("interaction content not found")

	// ErrEmptyUserID is returned for a blank userId.
	ErrEmptyUserID = errors.New("user ID cannot be empty")
)

// ContentLookup resolves a contentId to its record. search.Backend satisfies it.
type ContentLookup interface {
	Get(ctx context.Context, contentID string) (*models.ContentRecord, error)
}

// Invalidator drops every cached key under a namespace.
type Invalidator interface {
	InvalidateNamespace(ctx context.Context, namespace string) int
}

// Update carries an explicit preference change. A nil slice leaves the field
// untouched; an empty non-nil slice clears it.
type Update struct {
	FavoriteCategories []string
	FavoriteTags       []string
}

// Tracker applies interactions and explicit updates to the Store.
//
// Mutations for one user are serialized in-process. Across processes writes
// are last-write-wins.
type Tracker struct {
	store  *Store
	lookup ContentLookup
	cache  Invalidator
	locks  [lockStripes]sync.Mutex
	now    func() time.Time
}

// NewTracker returns a Tracker. cache may be nil when no cache is configured.
func NewTracker(store *Store, lookup ContentLookup, cache Invalidator) *Tracker {
	return &Tracker{
		store:  store,
		lookup: lookup,
		cache:  cache,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetPreferences returns the user's preference, creating and persisting the
// empty default when absent.
func (t *Tracker) GetPreferences(ctx context.Context, userID string) (*models.UserPreference, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	pref, err := t.store.Get(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	mu := t.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	// Another caller may have created it while we waited.
	if pref, err = t.store.Get(ctx, userID); err == nil {
		return pref, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	pref = models.NewUserPreference(userID, t.now())
	if err := t.store.Put(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// UpdatePreferences upserts the favorite sets given in u and refreshes lastUpdated.
func (t *Tracker) UpdatePreferences(ctx context.Context, userID string, u Update) (*models.UserPreference, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	pref, err := t.mutate(ctx, userID, func(p *models.UserPreference) {
		if u.FavoriteCategories != nil {
			p.FavoriteCategories = models.DedupeStrings(u.FavoriteCategories)
		}
		if u.FavoriteTags != nil {
			p.FavoriteTags = models.DedupeStrings(u.FavoriteTags)
		}
		p.LastUpdated = t.now()
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", userID).
		Int("favorite_categories", len(pref.FavoriteCategories)).
		Int("favorite_tags", len(pref.FavoriteTags)).
		Msg("Preferences updated")
	return pref, nil
}

// RecordInteraction adds contentID to the watch list and bumps the weights of
// its category and tags.
func (t *Tracker) RecordInteraction(ctx context.Context, userID, contentID string) (*models.UserPreference, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	contentID = strings.TrimSpace(contentID)

	rec, err := t.lookup.Get(ctx, contentID)
	if err != nil {
		if errors.Is(err, search.ErrNotFound) || errors.Is(err, ErrContentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrContentNotFound, contentID)
		}
		return nil, fmt.Errorf("lookup content %s: %w", contentID, err)
	}

	pref, err := t.mutate(ctx, userID, func(p *models.UserPreference) {
		p.RecordInteraction(rec.ContentID, rec.Category, rec.Tags, t.now())
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", userID).
		Str("content_id", rec.ContentID).
		Int("watched", len(pref.WatchedContent)).
		Msg("Interaction recorded")
	return pref, nil
}

// mutate loads or creates the user's record under the stripe lock, applies fn,
// persists, then invalidates the user's recommendations.
func (t *Tracker) mutate(ctx context.Context, userID string, fn func(*models.UserPreference)) (*models.UserPreference, error) {
	mu := t.lockFor(userID)
	mu.Lock()
	pref, err := t.store.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		pref = models.NewUserPreference(userID, t.now())
	case err != nil:
		mu.Unlock()
		return nil, err
	}

	fn(pref)
	err = t.store.Put(ctx, pref)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		t.cache.InvalidateNamespace(ctx, cache.UserRecommendationsNamespace(userID))
	}
	return pref, nil
}

func (t *Tracker) lockFor(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &t.locks[h.Sum32()%lockStripes]
}

func checkUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	return nil
}

// FallbackLookup tries each lookup in order and returns the first hit. When
// none has the record, a not-found answer from any of them wins over other
// failures.
type FallbackLookup []ContentLookup

// Get implements ContentLookup.
func (f FallbackLookup) Get(ctx context.Context, contentID string) (*models.ContentRecord, error) {
	var (
		lastErr  error
		notFound bool
	)
	for _, l := range f {
		if l == nil {
			continue
		}
		rec, err := l.Get(ctx, contentID)
		if err == nil {
			return rec, nil
		}
		if errors.Is(err, search.ErrNotFound) {
			notFound = true
			continue
		}
		logging.Ctx(ctx).Debug().Err(err).Str("content_id", contentID).Msg("Content lookup failed, trying next")
		lastErr = err
	}
	if notFound || lastErr == nil {
		return nil, search.ErrNotFound
	}
	return nil, lastErr
}
