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

// A category exists when published content names it or when it was upserted
// explicitly. Explicit rows supply description and icon and may deactivate it.
const categoriesSQL = `
WITH counts AS (
	SELECT category AS name, COUNT(*) AS n
	FROM content
	WHERE status = 'published' AND category <> ''
	GROUP BY category
),
names AS (
	SELECT name FROM counts
	UNION
	SELECT name FROM categories
)
SELECT n.name,
	COALESCE(k.description, ''),
	COALESCE(k.icon, ''),
	COALESCE(k.is_active, TRUE),
	COALESCE(c.n, 0)
FROM names n
LEFT JOIN categories k ON k.name = n.name
LEFT JOIN counts c ON c.name = n.name
WHERE COALESCE(k.is_active, TRUE)
ORDER BY n.name`

// Categories returns active categories ordered by name.
func (db *DB) Categories(ctx context.Context) (out []models.Category, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("categories", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, categoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer closeQuietly(rows)

	out = make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Name, &c.Description, &c.Icon, &c.IsActive, &c.ContentCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCategory stores display metadata for a category.
func (db *DB) UpsertCategory(ctx context.Context, c models.Category) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("upsert category: empty name")
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO categories (name, description, icon, is_active) VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			is_active = EXCLUDED.is_active`,
		name, c.Description, c.Icon, c.IsActive)
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", name, err)
	}
	return nil
}
