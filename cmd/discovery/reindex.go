// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/discovery/internal/config"
	"github.com/tomtom215/discovery/internal/database"
	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/models"
	"github.com/tomtom215/discovery/internal/search"
)

const defaultReindexBatch = 500

func newReindexCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the full-text index from the content replica",
		Long: `Rebuild the full-text index from the content replica.

Use this after restoring the replica from backup or when the index was lost.
The service must not be running against the same index directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			n, err := reindex(cmd.Context(), cfg, batchSize)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "indexed %d records\n", n)
			return err
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", defaultReindexBatch, "records per index batch")
	return cmd
}

// reindex copies every replica record into the search index and returns the
// number indexed.
func reindex(ctx context.Context, cfg *config.Config, batchSize int) (n int, err error) {
	if !cfg.Search.Enabled {
		return 0, errors.New("search is disabled (SEARCH_ENABLED=false)")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return 0, fmt.Errorf("open replica: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	idx, err := search.OpenIndex(cfg.Search.IndexPath)
	if err != nil {
		return 0, fmt.Errorf("open search index: %w", err)
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err = reindexInto(ctx, db, idx, batchSize)
	return n, err
}

// reindexInto streams db into idx batch by batch.
func reindexInto(ctx context.Context, db *database.DB, idx *search.BleveBackend, batchSize int) (int, error) {
	start := time.Now()
	total := 0
	err := db.EachContent(ctx, batchSize, func(batch []models.ContentRecord) error {
		if err := idx.IndexBatch(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		logging.Debug().Int("indexed", total).Msg("Reindex progress")
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("reindex after %d records: %w", total, err)
	}

	logging.Info().Int("records", total).Dur("elapsed", time.Since(start)).Msg("Search index rebuilt")
	return total, nil
}
