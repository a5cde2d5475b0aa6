// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package models

import (
	"slices"
	"strings"
	"time"
)

// SearchQuery is a keyword search with optional category filter and tag boosts.
type SearchQuery struct {
	Keywords string   `json:"keywords" validate:"max=512"`
	Category string   `json:"category,omitempty" validate:"max=128"`
	Tags     []string `json:"tags,omitempty" validate:"max=32,dive,max=64"`
}

// Normalized returns a copy with trimmed keywords and a sorted, deduplicated tag set.
// Two queries that differ only in tag order normalize to the same value.
func (q SearchQuery) Normalized() SearchQuery {
	out := SearchQuery{
		Keywords: strings.TrimSpace(q.Keywords),
		Category: strings.TrimSpace(q.Category),
		Tags:     DedupeStrings(q.Tags),
	}
	slices.Sort(out.Tags)
	return out
}

// Sort orders accepted by manual search.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Sortable manual search fields.
const (
	SortPublishDate = "publishDate"
	SortTitle       = "title"
	SortCategory    = "category"
	SortDuration    = "duration"
	SortCreatedAt   = "createdAt"
)

// ManualSortFields is the manual search sort allow-list.
var ManualSortFields = []string{SortPublishDate, SortTitle, SortCategory, SortDuration, SortCreatedAt}

// DateRange bounds publishDate. Either end may be open.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// ManualSearchFilters are the optional filters of a manual search. The
// publish date range may be sent flat (startDate/endDate) or nested under
// publishDate; Normalize folds the nested form into the flat fields.
type ManualSearchFilters struct {
	Title       string      `json:"title,omitempty" validate:"max=512"`
	Description string      `json:"description,omitempty" validate:"max=512"`
	Type        ContentType `json:"type,omitempty" validate:"omitempty,oneof=podcast documentary"`
	Category    string      `json:"category,omitempty" validate:"max=128"`
	Language    string      `json:"language,omitempty" validate:"max=32"`
	Tags        []string    `json:"tags,omitempty" validate:"max=32,dive,max=64"`
	StartDate   *time.Time  `json:"startDate,omitempty"`
	EndDate     *time.Time  `json:"endDate,omitempty"`
	PublishDate *DateRange  `json:"publishDate,omitempty"`
}

// ManualSearchRequest is a paginated, filtered listing. Zero values are
// replaced by defaults in Normalize.
type ManualSearchRequest struct {
	Page      int                 `json:"page,omitempty"`
	Limit     int                 `json:"limit,omitempty"`
	SortBy    string              `json:"sortBy,omitempty"`
	SortOrder string              `json:"sortOrder,omitempty"`
	Filters   ManualSearchFilters `json:"filters"`
}

// Normalize applies paging defaults and clamps, and replaces a sort field
// outside ManualSortFields with publishDate. It never fails.
func (r *ManualSearchRequest) Normalize(defaultLimit, maxLimit int) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxLimit {
		r.Limit = maxLimit
	}
	if !slices.Contains(ManualSortFields, r.SortBy) {
		r.SortBy = SortPublishDate
	}
	if strings.EqualFold(r.SortOrder, SortAsc) {
		r.SortOrder = SortAsc
	} else {
		r.SortOrder = SortDesc
	}
	r.Filters.Tags = DedupeStrings(r.Filters.Tags)
	if pd := r.Filters.PublishDate; pd != nil {
		if r.Filters.StartDate == nil {
			r.Filters.StartDate = pd.Start
		}
		if r.Filters.EndDate == nil {
			r.Filters.EndDate = pd.End
		}
		r.Filters.PublishDate = nil
	}
}

// Offset is the zero-based row offset of the requested page.
func (r *ManualSearchRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// ManualSearchResult is one page of a manual search.
type ManualSearchResult struct {
	Content    []ContentRecord `json:"content"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

// TotalPagesFor returns ceil(total/limit).
func TotalPagesFor(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
