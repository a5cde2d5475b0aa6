// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package models

import (
	"slices"
	"time"
)

// UserPreference is the per-user personalization record.
//
// WatchedContent is append-only and never holds duplicates. The weight maps
// only ever increase.
type UserPreference struct {
	UserID             string           `json:"userId"`
	FavoriteCategories []string         `json:"favoriteCategories"`
	FavoriteTags       []string         `json:"favoriteTags"`
	WatchedContent     []string         `json:"watchedContent"`
	CategoryWeights    map[string]int64 `json:"categoryWeights"`
	TagWeights         map[string]int64 `json:"tagWeights"`
	LastUpdated        time.Time        `json:"lastUpdated"`
}

// NewUserPreference returns the empty default for userID.
func NewUserPreference(userID string, now time.Time) *UserPreference {
	return &UserPreference{
		UserID:             userID,
		FavoriteCategories: []string{},
		FavoriteTags:       []string{},
		WatchedContent:     []string{},
		CategoryWeights:    map[string]int64{},
		TagWeights:         map[string]int64{},
		LastUpdated:        now,
	}
}

// EnsureDefaults replaces nil collections so the JSON form never carries null.
func (p *UserPreference) EnsureDefaults() {
	if p.FavoriteCategories == nil {
		p.FavoriteCategories = []string{}
	}
	if p.FavoriteTags == nil {
		p.FavoriteTags = []string{}
	}
	if p.WatchedContent == nil {
		p.WatchedContent = []string{}
	}
	if p.CategoryWeights == nil {
		p.CategoryWeights = map[string]int64{}
	}
	if p.TagWeights == nil {
		p.TagWeights = map[string]int64{}
	}
}

// HasWatched reports whether contentID is already in WatchedContent.
func (p *UserPreference) HasWatched(contentID string) bool {
	return slices.Contains(p.WatchedContent, contentID)
}

// RecordInteraction applies one interaction with a record of the given category and tags.
// The watch list is deduplicated; weights increment on every call.
func (p *UserPreference) RecordInteraction(contentID, category string, tags []string, now time.Time) {
	p.EnsureDefaults()
	if !p.HasWatched(contentID) {
		p.WatchedContent = append(p.WatchedContent, contentID)
	}
	if category != "" {
		p.CategoryWeights[category]++
	}
	for _, tag := range DedupeStrings(tags) {
		p.TagWeights[tag]++
	}
	p.LastUpdated = now
}

// HasSignals reports whether the preference carries anything a ranking query can use.
func (p *UserPreference) HasSignals() bool {
	return len(p.FavoriteCategories) > 0 || len(p.FavoriteTags) > 0 || len(p.WatchedContent) > 0
}

// Clone returns a deep copy.
func (p *UserPreference) Clone() *UserPreference {
	if p == nil {
		return nil
	}
	c := *p
	c.FavoriteCategories = slices.Clone(p.FavoriteCategories)
	c.FavoriteTags = slices.Clone(p.FavoriteTags)
	c.WatchedContent = slices.Clone(p.WatchedContent)
	c.CategoryWeights = cloneWeights(p.CategoryWeights)
	c.TagWeights = cloneWeights(p.TagWeights)
	c.EnsureDefaults()
	return &c
}

func cloneWeights(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
