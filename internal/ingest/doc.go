// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package ingest applies content_created and content_updated events.
//
// Each event is an idempotent upsert keyed on contentId, followed by an
// optional primary index update and cache invalidation:
//
//	event            namespaces invalidated
//	content_created  trending, recommendations, categories
//	content_updated  trending, recommendations, categories, similar_<contentId>
//
// The event channel is fire-and-forget. Handler never returns an error to the
// router; failures are counted under discovery_ingest_failures_total by stage
// (decode, validate, replica, index) and leave the replica stale until the
// next event for the same contentId.
package ingest
