// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package eventprocessor is the NATS JetStream plumbing behind content event
// ingestion.
//
// # Components
//
//   - EmbeddedServer: in-process NATS server with JetStream for single-node deployments
//   - StreamInitializer: creates or updates the CONTENT stream (subjects content.>)
//   - Subscriber: durable Watermill consumer bound to the stream with a queue group
//   - Publisher: Watermill publisher with Nats-Msg-Id deduplication and an optional breaker
//   - Router: Watermill router that acks every message, failed or not
//   - Serializer: envelope and bare-record decoding of content events
//
// # Event Format
//
// Producers publish either a bare ContentRecord or an envelope:
//
//	{"type": "content_updated", "record": {"contentId": "c1", ...}}
//
// A bare record takes its type from the subject: content.created is a
// content_created event, content.updated a content_updated event.
//
// # Delivery
//
// Content events are change notifications. The Router never nacks; a handler
// that fails or panics is logged and counted under
// discovery_ingest_failures_total{stage="handler"} and the message is acked.
// A missed event costs at most one cache TTL of staleness.
package eventprocessor
