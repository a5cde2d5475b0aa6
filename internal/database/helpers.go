// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/discovery/internal/models"
)

const contentColumns = "content_id, title, description, content_type, category, language, duration, publish_date, status, created_at, updated_at"

// prefixed returns contentColumns qualified with a table alias.
func prefixed(alias string) string {
	cols := strings.Split(contentColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// buildInClause builds "?,?,?" placeholders and args for IN clauses
func buildInClause(items []string) (string, []interface{}) {
	placeholders := make([]string, len(items))
	args := make([]interface{}, len(items))
	for i, item := range items {
		placeholders[i] = "?"
		args[i] = item
	}
	return strings.Join(placeholders, ","), args
}

// likeEscaper neutralizes LIKE wildcards. Patterns built from it must use ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns an ILIKE pattern matching s as a literal substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (models.ContentRecord, error) {
	var (
		c       models.ContentRecord
		ctype   string
		status  string
		publish sql.NullTime
	)
	if err := row.Scan(&c.ContentID, &c.Title, &c.Description, &ctype, &c.Category, &c.Language,
		&c.Duration, &publish, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	c.Type = models.ContentType(ctype)
	c.Status = models.ContentStatus(status)
	if publish.Valid {
		c.PublishDate = publish.Time
	}
	c.Tags = []string{}
	return c, nil
}

// queryContent runs a query selecting contentColumns and attaches tags.
func (db *DB) queryContent(ctx context.Context, query string, args ...interface{}) ([]models.ContentRecord, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	out := make([]models.ContentRecord, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := db.attachTags(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachTags loads tags for records in display order.
func (db *DB) attachTags(ctx context.Context, records []models.ContentRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, len(records))
	pos := make(map[string]int, len(records))
	for i := range records {
		ids[i] = records[i].ContentID
		pos[records[i].ContentID] = i
	}

	in, args := buildInClause(ids)
	rows, err := db.conn.QueryContext(ctx,
		"SELECT content_id, tag FROM content_tags WHERE content_id IN ("+in+") ORDER BY content_id, position", args...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		if i, ok := pos[id]; ok {
			records[i].Tags = append(records[i].Tags, tag)
		}
	}
	return rows.Err()
}

// closeQuietly closes a resource and explicitly ignores any error
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
