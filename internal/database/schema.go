// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package database

import (
	"context"
	"fmt"
)

// Tags live in their own table so that membership tests are plain joins.
// position preserves display order.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS content (
		content_id   VARCHAR PRIMARY KEY,
		title        VARCHAR NOT NULL,
		description  VARCHAR NOT NULL DEFAULT '',
		content_type VARCHAR NOT NULL,
		category     VARCHAR NOT NULL DEFAULT '',
		language     VARCHAR NOT NULL DEFAULT '',
		duration     BIGINT NOT NULL DEFAULT 0,
		publish_date TIMESTAMP,
		status       VARCHAR NOT NULL DEFAULT 'published',
		created_at   TIMESTAMP NOT NULL,
		updated_at   TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS content_tags (
		content_id VARCHAR NOT NULL,
		tag        VARCHAR NOT NULL,
		position   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		name        VARCHAR PRIMARY KEY,
		description VARCHAR NOT NULL DEFAULT '',
		icon        VARCHAR NOT NULL DEFAULT '',
		is_active   BOOLEAN NOT NULL DEFAULT TRUE
	)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
