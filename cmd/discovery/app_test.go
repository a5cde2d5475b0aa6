// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/discovery/internal/commands"
	"github.com/tomtom215/discovery/internal/config"
	"github.com/tomtom215/discovery/internal/eventprocessor"
	"github.com/tomtom215/discovery/internal/models"
	"github.com/tomtom215/discovery/internal/search"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Path = ":memory:"
	cfg.Database.MaxMemory = "512MB"
	cfg.Database.Threads = 2
	cfg.Search.IndexPath = ""
	cfg.Preference.Path = ""
	cfg.Cache.Backend = "memory"
	cfg.NATS.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp() error: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return a
}

func record(id, title, category string, tags []string, published time.Time) models.ContentRecord {
	return models.ContentRecord{
		ContentID:   id,
		Title:       title,
		Description: title + " explained",
		Type:        models.ContentTypePodcast,
		Category:    category,
		Language:    "en",
		Duration:    1800,
		PublishDate: published,
		Tags:        tags,
	}
}

func dispatch[T any](t *testing.T, a *app, command string, payload string) T {
	t.Helper()
	out, err := a.dispatcher.Dispatch(context.Background(), command, []byte(payload))
	if err != nil {
		t.Fatalf("Dispatch(%s) error: %v", command, err)
	}
	var v T
	if err := json.Unmarshal(out, &v); err != nil {
		t.Fatalf("decode %s result: %v", command, err)
	}
	return v
}

func TestApp_UpdateInvalidatesTrending(t *testing.T) {
	a := newTestApp(t, testConfig())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := a.ingest.ApplyCreated(ctx, record("c1", "Robots at work", "Tech", []string{"ai"}, now)); err != nil {
		t.Fatalf("ApplyCreated() error: %v", err)
	}

	first := dispatch[[]models.ContentRecord](t, a, commands.CmdGetTrending, `{"limit":5}`)
	if len(first) != 1 || first[0].Title != "Robots at work" {
		t.Fatalf("trending = %+v", first)
	}

	if err := a.ingest.ApplyUpdated(ctx, record("c1", "Robots at rest", "Tech", []string{"ai"}, now)); err != nil {
		t.Fatalf("ApplyUpdated() error: %v", err)
	}

	second := dispatch[[]models.ContentRecord](t, a, commands.CmdGetTrending, `{"limit":5}`)
	if len(second) != 1 || second[0].Title != "Robots at rest" {
		t.Errorf("trending after update = %+v, want new title", second)
	}
}

func TestApp_RecommendationsFollowInteractions(t *testing.T) {
	a := newTestApp(t, testConfig())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for i, r := range []models.ContentRecord{
		record("c1", "Neural nets", "Tech", []string{"ai"}, now.Add(-3*time.Hour)),
		record("c2", "Robot ethics", "Tech", []string{"ai", "ethics"}, now.Add(-2*time.Hour)),
		record("c3", "Deep sea", "Nature", []string{"ocean"}, now.Add(-time.Hour)),
	} {
		if err := a.ingest.ApplyCreated(ctx, r); err != nil {
			t.Fatalf("ApplyCreated(%d) error: %v", i, err)
		}
	}

	trending := dispatch[[]models.ContentRecord](t, a, commands.CmdGetTrending, `{"limit":10}`)
	anonymous := dispatch[[]models.ContentRecord](t, a, commands.CmdGetRecommendations, `{"userId":"nobody","limit":10}`)
	if len(anonymous) != len(trending) {
		t.Fatalf("recommendations without preference = %d records, trending = %d", len(anonymous), len(trending))
	}
	for i := range trending {
		if anonymous[i].ContentID != trending[i].ContentID {
			t.Errorf("position %d: recommendation %s, trending %s", i, anonymous[i].ContentID, trending[i].ContentID)
		}
	}

	_ = dispatch[models.UserPreference](t, a, commands.CmdRecordInteraction, `{"userId":"u1","contentId":"c1"}`)
	pref := dispatch[models.UserPreference](t, a, commands.CmdRecordInteraction, `{"userId":"u1","contentId":"c1"}`)
	if len(pref.WatchedContent) != 1 {
		t.Errorf("watchedContent = %v, want one entry", pref.WatchedContent)
	}
	if pref.CategoryWeights["Tech"] != 2 || pref.TagWeights["ai"] != 2 {
		t.Errorf("weights = %v / %v, want 2 each", pref.CategoryWeights, pref.TagWeights)
	}

	recs := dispatch[[]models.ContentRecord](t, a, commands.CmdGetRecommendations, `{"userId":"u1","limit":10}`)
	for _, r := range recs {
		if r.ContentID == "c1" {
			t.Errorf("watched content c1 recommended: %+v", recs)
		}
	}
}

func TestApp_ManualSearchPagination(t *testing.T) {
	a := newTestApp(t, testConfig())
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		r := record(fmt.Sprintf("m%02d", i), fmt.Sprintf("Episode %02d", i), "History", []string{"war"}, base.Add(time.Duration(i)*time.Hour))
		if err := a.ingest.ApplyCreated(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.ingest.ApplyCreated(ctx, record("other", "a.*b literal", "Tech", nil, base)); err != nil {
		t.Fatal(err)
	}

	res := dispatch[models.ManualSearchResult](t, a, commands.CmdManualSearch,
		`{"page":2,"limit":10,"sortBy":"__proto__","filters":{"category":"History"}}`)
	if res.Total != 25 || res.TotalPages != 3 || len(res.Content) != 10 || res.Page != 2 {
		t.Fatalf("result total=%d pages=%d len=%d page=%d", res.Total, res.TotalPages, len(res.Content), res.Page)
	}
	// Default sort is publishDate descending: page 2 starts at the 11th newest.
	if res.Content[0].ContentID != "m14" {
		t.Errorf("first on page 2 = %s, want m14", res.Content[0].ContentID)
	}

	literal := dispatch[models.ManualSearchResult](t, a, commands.CmdManualSearch, `{"filters":{"title":"a.*b"}}`)
	if literal.Total != 1 || literal.Content[0].ContentID != "other" {
		t.Errorf("literal title match = %+v", literal)
	}
}

func TestApp_SearchFallsBackWhenPrimaryClosed(t *testing.T) {
	a := newTestApp(t, testConfig())
	ctx := context.Background()

	if err := a.ingest.ApplyCreated(ctx, record("r1", "Robots", "Tech", []string{"robots"}, time.Now().UTC())); err != nil {
		t.Fatal(err)
	}
	// Every primary call now fails; the replica must answer.
	if err := a.index.Close(); err != nil {
		t.Fatal(err)
	}

	got := dispatch[[]models.ContentRecord](t, a, commands.CmdSearchContent, `{"keywords":"robots"}`)
	if len(got) != 1 || got[0].ContentID != "r1" {
		t.Errorf("search = %+v, want r1 from replica", got)
	}
}

func TestReindexInto(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Enabled = false
	a := newTestApp(t, cfg)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if err := a.ingest.ApplyCreated(ctx, record(fmt.Sprintf("x%d", i), "Doc", "Tech", nil, time.Now().UTC())); err != nil {
			t.Fatal(err)
		}
	}

	idx, err := search.OpenIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	n, err := reindexInto(ctx, a.replica, idx, 3)
	if err != nil {
		t.Fatalf("reindexInto() error: %v", err)
	}
	if n != 7 {
		t.Errorf("indexed = %d, want 7", n)
	}
	if count, _ := idx.DocCount(); count != 7 {
		t.Errorf("DocCount() = %d, want 7", count)
	}
}

func TestReindex_RequiresSearch(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Enabled = false
	if _, err := reindex(context.Background(), cfg, 10); err == nil {
		t.Error("reindex with search disabled should fail")
	}
}

func TestReadEvent(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	data, _ := json.Marshal(record("c9", "Whales", "Nature", []string{"ocean", "ocean"}, time.Now().UTC()))
	if err := os.WriteFile(good, data, 0o600); err != nil {
		t.Fatal(err)
	}
	event, err := readEvent(eventprocessor.EventContentCreated, good)
	if err != nil {
		t.Fatalf("readEvent() error: %v", err)
	}
	if event.Topic() != eventprocessor.SubjectContentCreated || len(event.Record.Tags) != 1 {
		t.Errorf("event = %+v", event)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"contentId":"c9","title":"x","type":"movie"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readEvent(eventprocessor.EventContentCreated, bad); err == nil {
		t.Error("unknown content type should fail validation")
	}

	if _, err := readEvent("content_deleted", good); err == nil {
		t.Error("unknown event type should fail")
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "discovery dev (none)\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestBreakerConfig(t *testing.T) {
	t.Parallel()

	defaults := search.DefaultBreakerConfig("search-primary")
	if got := breakerConfig(&config.SearchConfig{}); got != defaults {
		t.Errorf("zero config = %+v, want defaults %+v", got, defaults)
	}

	got := breakerConfig(&config.SearchConfig{BreakerFailureThreshold: 2, BreakerTimeout: time.Second})
	if got.FailureThreshold != 2 || got.Timeout != time.Second || got.MaxRequests != defaults.MaxRequests {
		t.Errorf("override = %+v", got)
	}
}
