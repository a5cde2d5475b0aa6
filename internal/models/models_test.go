// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestRecordInteraction_DedupesWatchedButCountsWeights(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := NewUserPreference("u1", now)

	p.RecordInteraction("c1", "Tech", []string{"ai", "ml"}, now)
	p.RecordInteraction("c1", "Tech", []string{"ai"}, now.Add(time.Minute))

	if len(p.WatchedContent) != 1 || p.WatchedContent[0] != "c1" {
		t.Errorf("WatchedContent = %v, want [c1]", p.WatchedContent)
	}
	if got := p.CategoryWeights["Tech"]; got != 2 {
		t.Errorf("CategoryWeights[Tech] = %d, want 2", got)
	}
	if got := p.TagWeights["ai"]; got != 2 {
		t.Errorf("TagWeights[ai] = %d, want 2", got)
	}
	if got := p.TagWeights["ml"]; got != 1 {
		t.Errorf("TagWeights[ml] = %d, want 1", got)
	}
	if !p.LastUpdated.Equal(now.Add(time.Minute)) {
		t.Errorf("LastUpdated = %v, want refreshed", p.LastUpdated)
	}
}

func TestRecordInteraction_DuplicateTagsInOneRecord(t *testing.T) {
	t.Parallel()

	p := &UserPreference{UserID: "u1"}
	p.RecordInteraction("c1", "", []string{"ai", "ai", " "}, time.Now())

	if got := p.TagWeights["ai"]; got != 1 {
		t.Errorf("TagWeights[ai] = %d, want 1", got)
	}
	if len(p.CategoryWeights) != 0 {
		t.Errorf("empty category should not be weighted, got %v", p.CategoryWeights)
	}
}

func TestUserPreferenceJSONHasNoNulls(t *testing.T) {
	t.Parallel()

	p := &UserPreference{UserID: "u1"}
	p.EnsureDefaults()

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, field := range []string{"favoriteCategories", "favoriteTags", "watchedContent", "categoryWeights", "tagWeights"} {
		if raw[field] == nil {
			t.Errorf("%s encoded as null", field)
		}
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	p := NewUserPreference("u1", time.Now())
	p.RecordInteraction("c1", "Tech", []string{"ai"}, time.Now())

	c := p.Clone()
	c.WatchedContent[0] = "changed"
	c.CategoryWeights["Tech"] = 99

	if p.WatchedContent[0] != "c1" {
		t.Error("Clone shares WatchedContent backing array")
	}
	if p.CategoryWeights["Tech"] != 1 {
		t.Error("Clone shares CategoryWeights map")
	}
}

func TestManualSearchRequestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        ManualSearchRequest
		wantPage  int
		wantLimit int
		wantSort  string
		wantOrder string
	}{
		{"defaults", ManualSearchRequest{}, 1, 20, SortPublishDate, SortDesc},
		{"clamped limit", ManualSearchRequest{Limit: 1000}, 1, 100, SortPublishDate, SortDesc},
		{"proto sort", ManualSearchRequest{SortBy: "__proto__"}, 1, 20, SortPublishDate, SortDesc},
		{"injection sort", ManualSearchRequest{SortBy: "title; DROP TABLE content"}, 1, 20, SortPublishDate, SortDesc},
		{"allowed sort asc", ManualSearchRequest{Page: 3, Limit: 5, SortBy: SortTitle, SortOrder: "ASC"}, 3, 5, SortTitle, SortAsc},
		{"unknown order", ManualSearchRequest{SortOrder: "sideways"}, 1, 20, SortPublishDate, SortDesc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := tt.in
			r.Normalize(20, 100)
			if r.Page != tt.wantPage || r.Limit != tt.wantLimit || r.SortBy != tt.wantSort || r.SortOrder != tt.wantOrder {
				t.Errorf("Normalize() = page %d limit %d sort %s %s, want %d %d %s %s",
					r.Page, r.Limit, r.SortBy, r.SortOrder, tt.wantPage, tt.wantLimit, tt.wantSort, tt.wantOrder)
			}
		})
	}
}

func TestManualSearchRequestNestedPublishDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantStart string
		wantEnd   string
	}{
		{"nested", `{"filters":{"publishDate":{"start":"2024-01-01T00:00:00Z","end":"2024-02-01T00:00:00Z"}}}`, "2024-01-01", "2024-02-01"},
		{"nested open end", `{"filters":{"publishDate":{"start":"2024-01-01T00:00:00Z"}}}`, "2024-01-01", ""},
		{"flat", `{"filters":{"startDate":"2024-03-01T00:00:00Z"}}`, "2024-03-01", ""},
		{"flat wins", `{"filters":{"startDate":"2024-03-01T00:00:00Z","publishDate":{"start":"2024-01-01T00:00:00Z","end":"2024-02-01T00:00:00Z"}}}`, "2024-03-01", "2024-02-01"},
	}

	day := func(ts *time.Time) string {
		if ts == nil {
			return ""
		}
		return ts.UTC().Format(time.DateOnly)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var r ManualSearchRequest
			if err := json.Unmarshal([]byte(tt.body), &r); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			r.Normalize(20, 100)
			if got := day(r.Filters.StartDate); got != tt.wantStart {
				t.Errorf("StartDate = %q, want %q", got, tt.wantStart)
			}
			if got := day(r.Filters.EndDate); got != tt.wantEnd {
				t.Errorf("EndDate = %q, want %q", got, tt.wantEnd)
			}
			if r.Filters.PublishDate != nil {
				t.Error("PublishDate should be folded into the flat fields")
			}
		})
	}
}

func TestTotalPagesFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{25, 10, 3},
		{20, 10, 2},
		{0, 10, 0},
		{1, 100, 1},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPagesFor(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPagesFor(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestSearchQueryNormalized(t *testing.T) {
	t.Parallel()

	a := SearchQuery{Keywords: " robots ", Tags: []string{"b", "a", "a"}}.Normalized()
	b := SearchQuery{Keywords: "robots", Tags: []string{"a", "b"}}.Normalized()

	if a.Keywords != b.Keywords || len(a.Tags) != len(b.Tags) {
		t.Fatalf("Normalized mismatch: %+v vs %+v", a, b)
	}
	for i := range a.Tags {
		if a.Tags[i] != b.Tags[i] {
			t.Errorf("Tags[%d] = %q vs %q", i, a.Tags[i], b.Tags[i])
		}
	}
}

func TestContentRecordNormalize(t *testing.T) {
	t.Parallel()

	c := ContentRecord{ContentID: " c1 ", Tags: []string{"ai", "", "ai", "ml"}}
	c.Normalize()

	if c.ContentID != "c1" {
		t.Errorf("ContentID = %q", c.ContentID)
	}
	if c.Status != StatusPublished {
		t.Errorf("Status = %q, want published default", c.Status)
	}
	if len(c.Tags) != 2 || c.Tags[0] != "ai" || c.Tags[1] != "ml" {
		t.Errorf("Tags = %v, want [ai ml]", c.Tags)
	}
}
