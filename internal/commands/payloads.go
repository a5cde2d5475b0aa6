// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package commands

// Command names.
const (
	CmdSearchContent      = "search_content"
	CmdGetRecommendations = "get_recommendations"
	CmdGetTrending        = "get_trending"
	CmdGetSimilar         = "get_similar"
	CmdManualSearch       = "manual_search"
	CmdGetCategories      = "get_categories"
	CmdGetPreferences     = "get_preferences"
	CmdUpdatePreferences  = "update_preferences"
	CmdRecordInteraction  = "record_interaction"
)

// Limits are not validated here: the engine clamps any value server-side.

// TrendingRequest is the get_trending payload.
type TrendingRequest struct {
	Limit int `json:"limit,omitempty"`
}

// RecommendationsRequest is the get_recommendations payload.
type RecommendationsRequest struct {
	UserID string `json:"userId" validate:"required,notblank,max=128"`
	Limit  int    `json:"limit,omitempty"`
}

// SimilarRequest is the get_similar payload.
type SimilarRequest struct {
	ContentID string `json:"contentId" validate:"required,notblank,max=128"`
	Limit     int    `json:"limit,omitempty"`
}

// PreferencesRequest is the get_preferences payload.
type PreferencesRequest struct {
	UserID string `json:"userId" validate:"required,notblank,max=128"`
}

// UpdatePreferencesRequest is the update_preferences payload. An omitted
// field is left untouched; an empty array clears it.
type UpdatePreferencesRequest struct {
	UserID             string   `json:"userId" validate:"required,notblank,max=128"`
	FavoriteCategories []string `json:"favoriteCategories,omitempty" validate:"max=64,dive,max=128"`
	FavoriteTags       []string `json:"favoriteTags,omitempty" validate:"max=128,dive,max=64"`
}

// InteractionRequest is the record_interaction payload.
type InteractionRequest struct {
	UserID    string `json:"userId" validate:"required,notblank,max=128"`
	ContentID string `json:"contentId" validate:"required,notblank,max=128"`
}
