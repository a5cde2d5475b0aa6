// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package database provides the DuckDB content replica of the discovery
// service.
//
// # Overview
//
// The replica is a local, eventually consistent copy of content owned by the
// content-management collaborator. It is written only by event ingestion
// (UpsertContent) and read by the query engine, both as the fallback
// search.Backend and as the sole backend of manual search and categories.
//
// # Schema
//
//   - content: one row per contentId
//   - content_tags: (content_id, tag, position), replaced on every upsert
//   - categories: optional display metadata keyed by category name
//
// # Text Matching
//
// Keyword and manual search use ILIKE with ESCAPE '\'. Caller text passes
// through containsPattern, which escapes %, _ and \, so input such as "a.*b"
// or "100%" only ever matches literally.
//
// # Thread Safety
//
// DB is safe for concurrent use. Concurrent upserts of one contentId are
// last-write-wins.
package database
