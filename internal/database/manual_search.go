// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/discovery/internal/metrics"
	"github.com/tomtom215/discovery/internal/models"
)

// manualSortColumns maps allow-listed sort fields to columns. Lookups outside
// it fall back to publish_date, so no caller input reaches ORDER BY.
var manualSortColumns = map[string]string{
	models.SortPublishDate: "publish_date",
	models.SortTitle:       "title",
	models.SortCategory:    "category",
	models.SortDuration:    "duration",
	models.SortCreatedAt:   "created_at",
}

// buildManualFilter builds the WHERE clause of a manual search. Filters are
// ANDed, except title and description which match as alternatives. Free text
// matches as an escaped literal substring.
func buildManualFilter(f models.ManualSearchFilters) (string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}

	var text []string
	if f.Title != "" {
		text = append(text, `title ILIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(f.Title))
	}
	if f.Description != "" {
		text = append(text, `description ILIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(f.Description))
	}
	if len(text) > 0 {
		conditions = append(conditions, "("+strings.Join(text, " OR ")+")")
	}
	if f.Type != "" {
		conditions = append(conditions, "content_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}
	if f.Language != "" {
		conditions = append(conditions, "language = ?")
		args = append(args, f.Language)
	}
	if len(f.Tags) > 0 {
		in, a := buildInClause(f.Tags)
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM content_tags t WHERE t.content_id = content.content_id AND t.tag IN ("+in+"))")
		args = append(args, a...)
	}
	if f.StartDate != nil {
		conditions = append(conditions, "publish_date >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		conditions = append(conditions, "publish_date <= ?")
		args = append(args, f.EndDate.UTC())
	}

	return strings.Join(conditions, " AND "), args
}

// ManualSearch returns one page of records matching the given filters plus
// the total count of matches. It does not filter on status. The request is
// expected to be normalized; an unknown sort field still sorts by publishDate.
func (db *DB) ManualSearch(ctx context.Context, req models.ManualSearchRequest) (result *models.ManualSearchResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("manual_search", time.Since(start), err) }()

	where, args := buildManualFilter(req.Filters)

	column, ok := manualSortColumns[req.SortBy]
	if !ok {
		column = "publish_date"
	}
	direction := "DESC"
	if req.SortOrder == models.SortAsc {
		direction = "ASC"
	}
	limit := req.Limit
	if limit < 1 {
		limit = 1
	}
	offset := req.Offset()
	if offset < 0 {
		offset = 0
	}

	var (
		content []models.ContentRecord
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf("SELECT %s FROM content WHERE %s ORDER BY %s %s NULLS LAST, content_id LIMIT ? OFFSET ?",
			contentColumns, where, column, direction)
		pageArgs := append(append([]interface{}{}, args...), limit, offset)
		rows, err := db.queryContent(gctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("manual search page: %w", err)
		}
		content = rows
		return nil
	})
	g.Go(func() error {
		if err := db.conn.QueryRowContext(gctx, "SELECT COUNT(*) FROM content WHERE "+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("manual search count: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.ManualSearchResult{
		Content:    content,
		Total:      total,
		Page:       req.Page,
		TotalPages: models.TotalPagesFor(total, limit),
	}, nil
}
