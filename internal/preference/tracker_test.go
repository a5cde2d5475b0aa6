// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package preference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/discovery/internal/cache"
	"github.com/tomtom215/discovery/internal/models"
	"github.com/tomtom215/discovery/internal/search"
)

type mapLookup struct {
	records map[string]models.ContentRecord
	err     error
}

func (m *mapLookup) Get(_ context.Context, id string) (*models.ContentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, search.ErrNotFound
	}
	return &rec, nil
}

func catalogue() *mapLookup {
	return &mapLookup{records: map[string]models.ContentRecord{
		"c1": {ContentID: "c1", Category: "science", Tags: []string{"space", "physics"}},
		"c2": {ContentID: "c2", Category: "science", Tags: []string{"space"}},
		"c3": {ContentID: "c3", Category: "", Tags: nil},
	}}
}

type recordingInvalidator struct {
	mu         sync.Mutex
	namespaces []string
}

func (r *recordingInvalidator) InvalidateNamespace(_ context.Context, ns string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces = append(r.namespaces, ns)
	return 0
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.namespaces...)
}

func newTestTracker(t *testing.T, lookup ContentLookup) (*Tracker, *recordingInvalidator) {
	t.Helper()
	inv := &recordingInvalidator{}
	tr := NewTracker(newTestStore(t), lookup, inv)
	return tr, inv
}

func TestTracker_GetPreferencesCreatesDefault(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker(t, catalogue())
	ctx := context.Background()

	p, err := tr.GetPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if p.UserID != "user-1" || len(p.WatchedContent) != 0 || p.FavoriteCategories == nil {
		t.Errorf("GetPreferences() = %+v, want empty default", p)
	}

	if _, err := tr.store.Get(ctx, "user-1"); err != nil {
		t.Errorf("default should be persisted, Get() error = %v", err)
	}
}

func TestTracker_GetPreferencesRejectsBlankUser(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker(t, catalogue())
	if _, err := tr.GetPreferences(context.Background(), "  "); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("error = %v, want ErrEmptyUserID", err)
	}
}

func TestTracker_RecordInteraction_SeedsNewPreference(t *testing.T) {
	t.Parallel()

	tr, inv := newTestTracker(t, catalogue())
	p, err := tr.RecordInteraction(context.Background(), "user-1", "c1")
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	if len(p.WatchedContent) != 1 || p.WatchedContent[0] != "c1" {
		t.Errorf("WatchedContent = %v, want [c1]", p.WatchedContent)
	}
	if p.CategoryWeights["science"] != 1 {
		t.Errorf("CategoryWeights = %v, want science=1", p.CategoryWeights)
	}
	if p.TagWeights["space"] != 1 || p.TagWeights["physics"] != 1 {
		t.Errorf("TagWeights = %v, want space=1 physics=1", p.TagWeights)
	}

	calls := inv.calls()
	if len(calls) != 1 || calls[0] != cache.UserRecommendationsNamespace("user-1") {
		t.Errorf("invalidations = %v, want [recommendations_user-1]", calls)
	}
}

func TestTracker_RecordInteraction_RepeatIncrementsWithoutDuplicating(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker(t, catalogue())
	ctx := context.Background()

	for _, id := range []string{"c1", "c1", "c2"} {
		if _, err := tr.RecordInteraction(ctx, "user-1", id); err != nil {
			t.Fatalf("RecordInteraction(%s) error = %v", id, err)
		}
	}

	p, err := tr.GetPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if got := fmt.Sprint(p.WatchedContent); got != "[c1 c2]" {
		t.Errorf("WatchedContent = %s, want [c1 c2]", got)
	}
	if p.CategoryWeights["science"] != 3 {
		t.Errorf("science weight = %d, want 3", p.CategoryWeights["science"])
	}
	if p.TagWeights["space"] != 3 || p.TagWeights["physics"] != 2 {
		t.Errorf("TagWeights = %v, want space=3 physics=2", p.TagWeights)
	}
}

func TestTracker_RecordInteraction_NoFacets(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker(t, catalogue())
	p, err := tr.RecordInteraction(context.Background(), "user-1", "c3")
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	if len(p.CategoryWeights) != 0 || len(p.TagWeights) != 0 {
		t.Errorf("weights = %v %v, want empty", p.CategoryWeights, p.TagWeights)
	}
	if !p.HasWatched("c3") {
		t.Error("c3 should be watched")
	}
}

func TestTracker_RecordInteraction_UnknownContent(t *testing.T) {
	t.Parallel()

	tr, inv := newTestTracker(t, catalogue())
	_, err := tr.RecordInteraction(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("error = %v, want ErrContentNotFound", err)
	}
	if len(inv.calls()) != 0 {
		t.Error("unknown content must not invalidate")
	}
	if _, err := tr.store.Get(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("no preference should be created, Get() error = %v", err)
	}
}

func TestTracker_UpdatePreferences(t *testing.T) {
	t.Parallel()

	tr, inv := newTestTracker(t, catalogue())
	ctx := context.Background()

	p, err := tr.UpdatePreferences(ctx, "user-1", Update{
		FavoriteCategories: []string{"science", "science", " history "},
	})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if got := fmt.Sprint(p.FavoriteCategories); got != "[science history]" {
		t.Errorf("FavoriteCategories = %s, want [science history]", got)
	}

	p, err = tr.UpdatePreferences(ctx, "user-1", Update{FavoriteTags: []string{"space"}})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if got := fmt.Sprint(p.FavoriteCategories); got != "[science history]" {
		t.Errorf("nil categories must be left untouched, got %s", got)
	}
	if got := fmt.Sprint(p.FavoriteTags); got != "[space]" {
		t.Errorf("FavoriteTags = %s, want [space]", got)
	}

	p, err = tr.UpdatePreferences(ctx, "user-1", Update{FavoriteTags: []string{}})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if len(p.FavoriteTags) != 0 {
		t.Errorf("empty tags should clear, got %v", p.FavoriteTags)
	}
	if len(inv.calls()) != 3 {
		t.Errorf("invalidations = %d, want 3", len(inv.calls()))
	}
}

func TestTracker_UpdateRefreshesLastUpdated(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker(t, catalogue())
	ticks := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	var mu sync.Mutex
	i := 0
	tr.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tk := ticks[i]
		if i < len(ticks)-1 {
			i++
		}
		return tk
	}

	p, err := tr.UpdatePreferences(context.Background(), "user-1", Update{FavoriteTags: []string{"space"}})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if !p.LastUpdated.Equal(ticks[1]) {
		t.Errorf("LastUpdated = %v, want %v", p.LastUpdated, ticks[1])
	}
}

func TestTracker_ConcurrentInteractions(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker(t, catalogue())
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.RecordInteraction(ctx, "user-1", "c2"); err != nil {
				t.Errorf("RecordInteraction() error = %v", err)
			}
		}()
	}
	wg.Wait()

	p, err := tr.GetPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if p.CategoryWeights["science"] != n {
		t.Errorf("science weight = %d, want %d (lost update)", p.CategoryWeights["science"], n)
	}
	if len(p.WatchedContent) != 1 {
		t.Errorf("WatchedContent = %v, want one entry", p.WatchedContent)
	}
}

func TestFallbackLookup(t *testing.T) {
	t.Parallel()

	down := &mapLookup{err: errors.New("index unavailable")}
	empty := &mapLookup{records: map[string]models.ContentRecord{}}
	ctx := context.Background()

	t.Run("falls through to replica", func(t *testing.T) {
		rec, err := FallbackLookup{down, catalogue()}.Get(ctx, "c1")
		if err != nil || rec.ContentID != "c1" {
			t.Errorf("Get() = %v, %v", rec, err)
		}
	})

	t.Run("primary miss tries replica", func(t *testing.T) {
		rec, err := FallbackLookup{empty, catalogue()}.Get(ctx, "c2")
		if err != nil || rec.ContentID != "c2" {
			t.Errorf("Get() = %v, %v", rec, err)
		}
	})

	t.Run("not found wins over outage", func(t *testing.T) {
		_, err := FallbackLookup{down, empty}.Get(ctx, "c1")
		if !errors.Is(err, search.ErrNotFound) {
			t.Errorf("error = %v, want search.ErrNotFound", err)
		}
	})

	t.Run("all down surfaces error", func(t *testing.T) {
		_, err := FallbackLookup{down, down}.Get(ctx, "c1")
		if err == nil || errors.Is(err, search.ErrNotFound) {
			t.Errorf("error = %v, want outage error", err)
		}
	})
}
