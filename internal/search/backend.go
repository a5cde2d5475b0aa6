// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package search

import (
	"context"
	"errors"

	"github.com/tomtom215/discovery/internal/models"
)

// ErrNotFound is returned by Backend.Get for an unknown contentId.
var ErrNotFound = errors.New("content not found")

// Backend answers the ranked discovery queries. The bleve index and the
// DuckDB replica both implement it so the query engine can fall back from
// one to the other.
//
// Every method returns only published records.
type Backend interface {
	// Trending returns records newest first.
	Trending(ctx context.Context, limit int) ([]models.ContentRecord, error)

	// Recommend ranks records matching the favorite categories or tags
	// higher, and never returns a watched record.
	Recommend(ctx context.Context, pref *models.UserPreference, limit int) ([]models.ContentRecord, error)

	// Search matches keywords against title, description and tags. Category
	// is a hard filter; tags only boost.
	Search(ctx context.Context, q models.SearchQuery, limit int) ([]models.ContentRecord, error)

	// Similar returns records sharing a category or tag with ref, excluding ref.
	Similar(ctx context.Context, ref *models.ContentRecord, limit int) ([]models.ContentRecord, error)

	// Get returns one record regardless of status, or ErrNotFound.
	Get(ctx context.Context, contentID string) (*models.ContentRecord, error)
}
