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

	"github.com/tomtom215/discovery/internal/metrics"
	"github.com/tomtom215/discovery/internal/models"
)

// Trending returns published records, newest publishDate first.
func (db *DB) Trending(ctx context.Context, limit int) (out []models.ContentRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("trending", time.Since(start), err) }()

	out, err = db.queryContent(ctx, `
		SELECT `+contentColumns+` FROM content
		WHERE status = 'published'
		ORDER BY publish_date DESC NULLS LAST, content_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	return out, nil
}

// Recommend scores each unwatched published record by one point for a favorite
// category and one per favorite tag, then orders by score and recency.
// Records with score zero are still returned after the matches.
func (db *DB) Recommend(ctx context.Context, pref *models.UserPreference, limit int) (out []models.ContentRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("recommend", time.Since(start), err) }()

	var (
		score []string
		where = []string{"c.status = 'published'"}
		args  []interface{}
		wargs []interface{}
	)
	if len(pref.FavoriteCategories) > 0 {
		in, a := buildInClause(pref.FavoriteCategories)
		score = append(score, "CASE WHEN c.category IN ("+in+") THEN 1 ELSE 0 END")
		args = append(args, a...)
	}
	if len(pref.FavoriteTags) > 0 {
		in, a := buildInClause(pref.FavoriteTags)
		score = append(score, "(SELECT COUNT(*) FROM content_tags t WHERE t.content_id = c.content_id AND t.tag IN ("+in+"))")
		args = append(args, a...)
	}
	if len(pref.WatchedContent) > 0 {
		in, a := buildInClause(pref.WatchedContent)
		where = append(where, "c.content_id NOT IN ("+in+")")
		wargs = append(wargs, a...)
	}
	scoreExpr := "0"
	if len(score) > 0 {
		scoreExpr = strings.Join(score, " + ")
	}

	query := `
		SELECT ` + contentColumns + ` FROM (
			SELECT ` + prefixed("c") + `, ` + scoreExpr + ` AS score
			FROM content c
			WHERE ` + strings.Join(where, " AND ") + `
		) s
		ORDER BY score DESC, publish_date DESC NULLS LAST, content_id
		LIMIT ?`
	args = append(args, wargs...)
	args = append(args, limit)

	out, err = db.queryContent(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return out, nil
}

// Search is the replica's keyword search. Each keyword term is matched as a
// case-insensitive literal substring, weighted title 3, description 2 and
// tag 1. A record must match at least one term. Category is exact; tags add
// one point each to ranking.
func (db *DB) Search(ctx context.Context, q models.SearchQuery, limit int) (out []models.ContentRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("search", time.Since(start), err) }()

	terms := strings.Fields(q.Keywords)
	if len(terms) == 0 {
		return []models.ContentRecord{}, nil
	}

	var (
		match []string
		args  []interface{}
	)
	for _, term := range terms {
		p := containsPattern(term)
		match = append(match, `CASE WHEN c.title ILIKE ? ESCAPE '\' THEN 3 ELSE 0 END`,
			`CASE WHEN c.description ILIKE ? ESCAPE '\' THEN 2 ELSE 0 END`,
			`CASE WHEN EXISTS (SELECT 1 FROM content_tags t WHERE t.content_id = c.content_id AND t.tag ILIKE ? ESCAPE '\') THEN 1 ELSE 0 END`)
		args = append(args, p, p, p)
	}

	boost := "0"
	if len(q.Tags) > 0 {
		in, a := buildInClause(q.Tags)
		boost = "(SELECT COUNT(*) FROM content_tags t WHERE t.content_id = c.content_id AND t.tag IN (" + in + "))"
		args = append(args, a...)
	}

	where := "c.status = 'published'"
	if q.Category != "" {
		where += " AND c.category = ?"
		args = append(args, q.Category)
	}

	query := `
		SELECT ` + contentColumns + ` FROM (
			SELECT ` + prefixed("c") + `, (` + strings.Join(match, " + ") + `) AS match_score, ` + boost + ` AS boost
			FROM content c
			WHERE ` + where + `
		) s
		WHERE match_score > 0
		ORDER BY match_score + boost DESC, publish_date DESC NULLS LAST, content_id
		LIMIT ?`
	args = append(args, limit)

	out, err = db.queryContent(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return out, nil
}

// Similar returns published records sharing ref's category or a tag, ordered
// by number of shared facets and recency. ref itself is excluded.
func (db *DB) Similar(ctx context.Context, ref *models.ContentRecord, limit int) (out []models.ContentRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("similar", time.Since(start), err) }()

	if ref.Category == "" && len(ref.Tags) == 0 {
		return []models.ContentRecord{}, nil
	}

	var (
		score []string
		args  []interface{}
	)
	if ref.Category != "" {
		score = append(score, "CASE WHEN c.category = ? THEN 1 ELSE 0 END")
		args = append(args, ref.Category)
	}
	if len(ref.Tags) > 0 {
		in, a := buildInClause(ref.Tags)
		score = append(score, "(SELECT COUNT(*) FROM content_tags t WHERE t.content_id = c.content_id AND t.tag IN ("+in+"))")
		args = append(args, a...)
	}
	args = append(args, ref.ContentID, limit)

	query := `
		SELECT ` + contentColumns + ` FROM (
			SELECT ` + prefixed("c") + `, ` + strings.Join(score, " + ") + ` AS shared
			FROM content c
			WHERE c.status = 'published' AND c.content_id <> ?
		) s
		WHERE shared > 0
		ORDER BY shared DESC, publish_date DESC NULLS LAST, content_id
		LIMIT ?`

	// The score placeholders precede the WHERE placeholder in the SQL text.
	out, err = db.queryContent(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	return out, nil
}
