// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/discovery/internal/models"
	"github.com/tomtom215/discovery/internal/preference"
	"github.com/tomtom215/discovery/internal/validation"
)

type fakeEngine struct {
	lastLimit  int
	lastUser   string
	lastQuery  models.SearchQuery
	lastManual models.ManualSearchRequest
	err        error
}

func (f *fakeEngine) GetTrending(_ context.Context, limit int) ([]models.ContentRecord, error) {
	f.lastLimit = limit
	return []models.ContentRecord{{ContentID: "t1", Title: "Trending"}}, f.err
}

func (f *fakeEngine) GetRecommendations(_ context.Context, userID string, limit int) ([]models.ContentRecord, error) {
	f.lastUser, f.lastLimit = userID, limit
	return []models.ContentRecord{{ContentID: "r1"}}, f.err
}

func (f *fakeEngine) Search(_ context.Context, q models.SearchQuery) ([]models.ContentRecord, error) {
	f.lastQuery = q
	return []models.ContentRecord{}, f.err
}

func (f *fakeEngine) GetSimilar(_ context.Context, contentID string, limit int) ([]models.ContentRecord, error) {
	f.lastLimit = limit
	return []models.ContentRecord{{ContentID: contentID + "-similar"}}, f.err
}

func (f *fakeEngine) ManualSearch(_ context.Context, req models.ManualSearchRequest) (*models.ManualSearchResult, error) {
	f.lastManual = req
	return &models.ManualSearchResult{Content: []models.ContentRecord{}, Total: 25, Page: req.Page, TotalPages: 3}, f.err
}

func (f *fakeEngine) GetCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{Name: "Tech", IsActive: true}}, f.err
}

type fakeTracker struct {
	lastUpdate preference.Update
	err        error
}

func (f *fakeTracker) GetPreferences(_ context.Context, userID string) (*models.UserPreference, error) {
	return models.NewUserPreference(userID, time.Unix(0, 0)), f.err
}

func (f *fakeTracker) UpdatePreferences(_ context.Context, userID string, u preference.Update) (*models.UserPreference, error) {
	f.lastUpdate = u
	p := models.NewUserPreference(userID, time.Unix(0, 0))
	if u.FavoriteTags != nil {
		p.FavoriteTags = u.FavoriteTags
	}
	return p, f.err
}

func (f *fakeTracker) RecordInteraction(_ context.Context, userID, contentID string) (*models.UserPreference, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := models.NewUserPreference(userID, time.Unix(0, 0))
	p.WatchedContent = []string{contentID}
	return p, nil
}

func newTestDispatcher() (*Dispatcher, *fakeEngine, *fakeTracker) {
	e, tr := &fakeEngine{}, &fakeTracker{}
	return NewDispatcher(e, tr), e, tr
}

func TestDispatcher_Commands(t *testing.T) {
	t.Parallel()
	d, _, _ := newTestDispatcher()

	want := map[string]bool{
		CmdSearchContent: true, CmdGetRecommendations: true, CmdGetTrending: true,
		CmdGetSimilar: true, CmdManualSearch: true, CmdGetCategories: true,
		CmdGetPreferences: true, CmdUpdatePreferences: true, CmdRecordInteraction: true,
	}
	got := d.Commands()
	if len(got) != len(want) {
		t.Fatalf("Commands() = %v, want %d entries", got, len(want))
	}
	for _, name := range got {
		if !want[name] {
			t.Errorf("unexpected command %q", name)
		}
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("trending with empty payload", func(t *testing.T) {
		d, e, _ := newTestDispatcher()
		out, err := d.Dispatch(ctx, CmdGetTrending, nil)
		if err != nil {
			t.Fatalf("Dispatch() error: %v", err)
		}
		var got []models.ContentRecord
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ContentID != "t1" {
			t.Errorf("result = %+v", got)
		}
		if e.lastLimit != 0 {
			t.Errorf("limit = %d, want 0 passed through for engine defaulting", e.lastLimit)
		}
	})

	t.Run("recommendations passes user and limit", func(t *testing.T) {
		d, e, _ := newTestDispatcher()
		if _, err := d.Dispatch(ctx, CmdGetRecommendations, []byte(`{"userId":"u1","limit":500}`)); err != nil {
			t.Fatalf("Dispatch() error: %v", err)
		}
		if e.lastUser != "u1" || e.lastLimit != 500 {
			t.Errorf("engine got user=%q limit=%d", e.lastUser, e.lastLimit)
		}
	})

	t.Run("search decodes optional fields", func(t *testing.T) {
		d, e, _ := newTestDispatcher()
		if _, err := d.Dispatch(ctx, CmdSearchContent, []byte(`{"keywords":"robots","category":"Tech","tags":["ai"]}`)); err != nil {
			t.Fatalf("Dispatch() error: %v", err)
		}
		if e.lastQuery.Keywords != "robots" || e.lastQuery.Category != "Tech" || len(e.lastQuery.Tags) != 1 {
			t.Errorf("query = %+v", e.lastQuery)
		}
	})

	t.Run("manual search keeps unknown sortBy for the engine", func(t *testing.T) {
		d, e, _ := newTestDispatcher()
		out, err := d.Dispatch(ctx, CmdManualSearch, []byte(`{"page":2,"limit":10,"sortBy":"__proto__","filters":{"title":"a.*b"}}`))
		if err != nil {
			t.Fatalf("Dispatch() error: %v", err)
		}
		if e.lastManual.SortBy != "__proto__" || e.lastManual.Filters.Title != "a.*b" {
			t.Errorf("manual request = %+v", e.lastManual)
		}
		var res models.ManualSearchResult
		if err := json.Unmarshal(out, &res); err != nil {
			t.Fatal(err)
		}
		if res.TotalPages != 3 || res.Page != 2 {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("update preferences distinguishes omitted from empty", func(t *testing.T) {
		d, _, tr := newTestDispatcher()
		if _, err := d.Dispatch(ctx, CmdUpdatePreferences, []byte(`{"userId":"u1","favoriteTags":[]}`)); err != nil {
			t.Fatalf("Dispatch() error: %v", err)
		}
		if tr.lastUpdate.FavoriteCategories != nil {
			t.Errorf("omitted categories should stay nil, got %v", tr.lastUpdate.FavoriteCategories)
		}
		if tr.lastUpdate.FavoriteTags == nil || len(tr.lastUpdate.FavoriteTags) != 0 {
			t.Errorf("empty tags should be non-nil and empty, got %#v", tr.lastUpdate.FavoriteTags)
		}
	})

	t.Run("record interaction", func(t *testing.T) {
		d, _, _ := newTestDispatcher()
		out, err := d.Dispatch(ctx, CmdRecordInteraction, []byte(`{"userId":"u1","contentId":"c1"}`))
		if err != nil {
			t.Fatalf("Dispatch() error: %v", err)
		}
		var pref models.UserPreference
		if err := json.Unmarshal(out, &pref); err != nil {
			t.Fatal(err)
		}
		if len(pref.WatchedContent) != 1 || pref.WatchedContent[0] != "c1" {
			t.Errorf("watchedContent = %v", pref.WatchedContent)
		}
	})
}

func TestDispatcher_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		command  string
		payload  string
		trackErr error
		wantCode string
	}{
		{"unknown command", "delete_everything", `{}`, nil, CodeUnknownCommand},
		{"malformed json", CmdGetTrending, `{"limit":`, nil, CodeInvalidPayload},
		{"wrong type", CmdGetTrending, `{"limit":"ten"}`, nil, CodeInvalidPayload},
		{"missing userId", CmdGetRecommendations, `{"limit":5}`, nil, CodeValidation},
		{"blank userId", CmdGetPreferences, `{"userId":"   "}`, nil, CodeValidation},
		{"missing contentId", CmdRecordInteraction, `{"userId":"u1"}`, nil, CodeValidation},
		{"bad content type filter", CmdManualSearch, `{"filters":{"type":"movie"}}`, nil, CodeValidation},
		{"unknown content", CmdRecordInteraction, `{"userId":"u1","contentId":"nope"}`, fmt.Errorf("%w: nope", preference.ErrContentNotFound), CodeNotFound},
		{"storage failure", CmdGetPreferences, `{"userId":"u1"}`, errors.New("badger: closed"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, tr := &fakeEngine{}, &fakeTracker{err: tt.trackErr}
			d := NewDispatcher(e, tr)

			_, err := d.Dispatch(ctx, tt.command, []byte(tt.payload))
			if err == nil {
				t.Fatal("Dispatch() expected error")
			}
			if got := ErrorCode(err); got != tt.wantCode {
				t.Errorf("ErrorCode() = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestNewErrorBody(t *testing.T) {
	t.Parallel()
	d, _, _ := newTestDispatcher()

	_, err := d.Dispatch(context.Background(), CmdGetSimilar, []byte(`{}`))
	body := NewErrorBody(err)
	if body.Code != CodeValidation {
		t.Fatalf("code = %q, want %q", body.Code, CodeValidation)
	}
	fields, _ := body.Details["fields"].([]validation.FieldError)
	if len(fields) != 1 || fields[0].Field != "contentId" {
		t.Errorf("details = %v, want field contentId", body.Details)
	}

	internal := NewErrorBody(errors.New("duckdb: disk I/O error at /data"))
	if internal.Code != CodeInternal || internal.Message != "internal error" {
		t.Errorf("internal body = %+v, want generic message", internal)
	}

	timeout := NewErrorBody(fmt.Errorf("search: %w", context.DeadlineExceeded))
	if timeout.Code != CodeTimeout {
		t.Errorf("timeout code = %q", timeout.Code)
	}

	throttled := NewErrorBody(ErrRateLimited)
	if throttled.Code != CodeRateLimited || throttled.Message != "rate limit exceeded" {
		t.Errorf("throttled body = %+v", throttled)
	}
}
