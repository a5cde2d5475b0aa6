// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/discovery/internal/metrics"
	"github.com/tomtom215/discovery/internal/models"
)

const upsertContentSQL = `
INSERT INTO content (content_id, title, description, content_type, category, language,
	duration, publish_date, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (content_id) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	content_type = EXCLUDED.content_type,
	category = EXCLUDED.category,
	language = EXCLUDED.language,
	duration = EXCLUDED.duration,
	publish_date = EXCLUDED.publish_date,
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at`

// UpsertContent inserts or replaces the record keyed on ContentID. A repeated
// or out-of-order create is an update. CreatedAt is kept from the first write.
//
// The record is normalized in place and its replica timestamps are filled in.
func (db *DB) UpsertContent(ctx context.Context, c *models.ContentRecord) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert_content", time.Since(start), err) }()

	c.Normalize()
	if c.ContentID == "" {
		return fmt.Errorf("upsert content: empty contentId")
	}
	now := db.now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, upsertContentSQL,
		c.ContentID, c.Title, c.Description, string(c.Type), c.Category, c.Language,
		c.Duration, nullTime(c.PublishDate), string(c.Status), now, now); err != nil {
		return fmt.Errorf("upsert content %s: %w", c.ContentID, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM content_tags WHERE content_id = ?", c.ContentID); err != nil {
		return fmt.Errorf("clear tags %s: %w", c.ContentID, err)
	}
	for i, tag := range c.Tags {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO content_tags (content_id, tag, position) VALUES (?, ?, ?)", c.ContentID, tag, i); err != nil {
			return fmt.Errorf("insert tag %s: %w", c.ContentID, err)
		}
	}

	var createdAt time.Time
	if err = tx.QueryRowContext(ctx, "SELECT created_at FROM content WHERE content_id = ?", c.ContentID).Scan(&createdAt); err != nil {
		return fmt.Errorf("read back %s: %w", c.ContentID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert %s: %w", c.ContentID, err)
	}
	c.CreatedAt = createdAt
	c.UpdatedAt = now
	return nil
}

// GetContent returns one record in any status, or ErrContentNotFound.
func (db *DB) GetContent(ctx context.Context, contentID string) (*models.ContentRecord, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+contentColumns+" FROM content WHERE content_id = ?", contentID)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", contentID, err)
	}
	records := []models.ContentRecord{c}
	if err := db.attachTags(ctx, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

// Get implements search.Backend.
func (db *DB) Get(ctx context.Context, contentID string) (*models.ContentRecord, error) {
	return db.GetContent(ctx, contentID)
}

// CountContent returns the number of replicated records.
func (db *DB) CountContent(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM content").Scan(&n)
	return n, err
}

// EachContent pages through every record ordered by contentId and calls fn
// with each batch. Iteration stops at the first error from fn.
func (db *DB) EachContent(ctx context.Context, batchSize int, fn func([]models.ContentRecord) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	after := ""
	for {
		batch, err := db.queryContent(ctx,
			"SELECT "+contentColumns+" FROM content WHERE content_id > ? ORDER BY content_id LIMIT ?", after, batchSize)
		if err != nil {
			return fmt.Errorf("page content after %q: %w", after, err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		after = batch[len(batch)-1].ContentID
	}
}
