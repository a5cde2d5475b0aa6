// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package commands

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/metrics"
	"github.com/tomtom215/discovery/internal/models"
	"github.com/tomtom215/discovery/internal/preference"
	"github.com/tomtom215/discovery/internal/validation"
)

// QueryEngine is the read side the dispatcher serves. *discovery.Engine satisfies it.
type QueryEngine interface {
	GetTrending(ctx context.Context, limit int) ([]models.ContentRecord, error)
	GetRecommendations(ctx context.Context, userID string, limit int) ([]models.ContentRecord, error)
	Search(ctx context.Context, q models.SearchQuery) ([]models.ContentRecord, error)
	GetSimilar(ctx context.Context, contentID string, limit int) ([]models.ContentRecord, error)
	ManualSearch(ctx context.Context, req models.ManualSearchRequest) (*models.ManualSearchResult, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
}

// PreferenceTracker is the preference side. *preference.Tracker satisfies it.
type PreferenceTracker interface {
	GetPreferences(ctx context.Context, userID string) (*models.UserPreference, error)
	UpdatePreferences(ctx context.Context, userID string, u preference.Update) (*models.UserPreference, error)
	RecordInteraction(ctx context.Context, userID, contentID string) (*models.UserPreference, error)
}

type handlerFunc func(ctx context.Context, payload []byte) (interface{}, error)

// Dispatcher routes a named command to its operation.
type Dispatcher struct {
	handlers map[string]handlerFunc
}

// NewDispatcher registers every command against engine and tracker.
func NewDispatcher(engine QueryEngine, tracker PreferenceTracker) *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]handlerFunc)}

	d.handlers[CmdGetTrending] = func(ctx context.Context, p []byte) (interface{}, error) {
		req, err := decode[TrendingRequest](p)
		if err != nil {
			return nil, err
		}
		return engine.GetTrending(ctx, req.Limit)
	}
	d.handlers[CmdGetRecommendations] = func(ctx context.Context, p []byte) (interface{}, error) {
		req, err := decode[RecommendationsRequest](p)
		if err != nil {
			return nil, err
		}
		return engine.GetRecommendations(ctx, req.UserID, req.Limit)
	}
	d.handlers[CmdSearchContent] = func(ctx context.Context, p []byte) (interface{}, error) {
		req, err := decode[models.SearchQuery](p)
		if err != nil {
			return nil, err
		}
		return engine.Search(ctx, req)
	}
	d.handlers[CmdGetSimilar] = func(ctx context.Context, p []byte) (interface{}, error) {
		req, err := decode[SimilarRequest](p)
		if err != nil {
			return nil, err
		}
		return engine.GetSimilar(ctx, req.ContentID, req.Limit)
	}
	d.handlers[CmdManualSearch] = func(ctx context.Context, p []byte) (interface{}, error) {
		req, err := decode[models.ManualSearchRequest](p)
		if err != nil {
			return nil, err
		}
		return engine.ManualSearch(ctx, req)
	}
	d.handlers[CmdGetCategories] = func(ctx context.Context, _ []byte) (interface{}, error) {
		return engine.GetCategories(ctx)
	}
	d.handlers[CmdGetPreferences] = func(ctx context.Context, p []byte) (interface{}, error) {
		req, err := decode[PreferencesRequest](p)
		if err != nil {
			return nil, err
		}
		return tracker.GetPreferences(ctx, req.UserID)
	}
	d.handlers[CmdUpdatePreferences] = func(ctx context.Context, p []byte) (interface{}, error) {
		req, err := decode[UpdatePreferencesRequest](p)
		if err != nil {
			return nil, err
		}
		pref, err := tracker.UpdatePreferences(ctx, req.UserID, preference.Update{
			FavoriteCategories: req.FavoriteCategories,
			FavoriteTags:       req.FavoriteTags,
		})
		metrics.RecordPreferenceOperation("update", err)
		return pref, err
	}
	d.handlers[CmdRecordInteraction] = func(ctx context.Context, p []byte) (interface{}, error) {
		req, err := decode[InteractionRequest](p)
		if err != nil {
			return nil, err
		}
		pref, err := tracker.RecordInteraction(ctx, req.UserID, req.ContentID)
		metrics.RecordPreferenceOperation("interaction", err)
		return pref, err
	}

	return d
}

// Commands lists the registered command names in sorted order.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs command with payload and returns the JSON-encoded result.
// An empty payload is treated as {}.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, payload []byte) (out []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCommand(command, ErrorCode(err), time.Since(start))
	}()

	h, ok := d.handlers[command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	result, err := h(ctx, payload)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("command", command).Msg("Command failed")
		return nil, err
	}

	out, err = json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", command, err)
	}
	return out, nil
}

// decode unmarshals and validates a payload.
func decode[T any](payload []byte) (T, error) {
	var req T
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("{}")
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return req, verr
	}
	return req, nil
}
