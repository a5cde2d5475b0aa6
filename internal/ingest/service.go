// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/discovery/internal/cache"
	"github.com/tomtom215/discovery/internal/eventprocessor"
	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/metrics"
	"github.com/tomtom215/discovery/internal/models"
)

// Replica is the durable store content events are applied to.
type Replica interface {
	UpsertContent(ctx context.Context, c *models.ContentRecord) error
}

// Indexer keeps the primary search index in step with the replica.
type Indexer interface {
	Index(ctx context.Context, c *models.ContentRecord) error
}

// Invalidator drops every cached key under a namespace.
type Invalidator interface {
	InvalidateNamespace(ctx context.Context, namespace string) int
}

// Service applies content events to the replica, the primary index and the
// query cache.
type Service struct {
	replica Replica
	index   Indexer
	cache   Invalidator
}

// NewService wires the ingestion service. index and cache may be nil.
func NewService(replica Replica, index Indexer, cache Invalidator) *Service {
	return &Service{replica: replica, index: index, cache: cache}
}

// ApplyCreated upserts rec. A created event for a known contentId is an
// update of its attributes, not an error.
func (s *Service) ApplyCreated(ctx context.Context, rec models.ContentRecord) error {
	return s.Apply(ctx, eventprocessor.NewContentEvent(eventprocessor.EventContentCreated, rec))
}

// ApplyUpdated upserts rec and also drops similar results computed from it.
func (s *Service) ApplyUpdated(ctx context.Context, rec models.ContentRecord) error {
	return s.Apply(ctx, eventprocessor.NewContentEvent(eventprocessor.EventContentUpdated, rec))
}

// Apply validates and applies one event. The cache is only invalidated after
// the replica accepted the record. An index failure is logged and counted but
// does not fail the event; the replica answers until the next reindex.
func (s *Service) Apply(ctx context.Context, event *eventprocessor.ContentEvent) error {
	start := time.Now()

	if err := event.Validate(); err != nil {
		metrics.RecordIngestFailure("validate")
		return fmt.Errorf("apply %s: %w", event.Type, err)
	}
	rec := &event.Record

	if err := s.replica.UpsertContent(ctx, rec); err != nil {
		metrics.RecordIngestFailure("replica")
		return fmt.Errorf("apply %s %s: %w", event.Type, rec.ContentID, err)
	}

	if s.index != nil {
		if err := s.index.Index(ctx, rec); err != nil {
			metrics.RecordIngestFailure("index")
			logging.Ctx(ctx).Warn().Err(err).
				Str("content_id", rec.ContentID).
				Msg("Primary index update failed, replica remains authoritative")
		}
	}

	dropped := s.invalidate(ctx, event)

	metrics.RecordIngestEvent(string(event.Type), time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("event", string(event.Type)).
		Str("content_id", rec.ContentID).
		Int("invalidated_keys", dropped).
		Msg("Content event applied")
	return nil
}

func (s *Service) invalidate(ctx context.Context, event *eventprocessor.ContentEvent) int {
	if s.cache == nil {
		return 0
	}
	namespaces := []string{
		cache.NamespaceTrending,
		cache.NamespaceRecommendations,
		cache.NamespaceCategories,
	}
	if event.Type == eventprocessor.EventContentUpdated {
		namespaces = append(namespaces, cache.SimilarNamespace(event.Record.ContentID))
	}

	n := 0
	for _, ns := range namespaces {
		n += s.cache.InvalidateNamespace(ctx, ns)
	}
	return n
}
