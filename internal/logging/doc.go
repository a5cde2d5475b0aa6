// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package logging provides the process-wide zerolog logger for the discovery service.
//
// Every component logs through this package so that level, format and field names
// stay uniform across the query engine, ingestion, the command responder and the
// supervisor tree.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("content_id", id).Msg("Content indexed")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Primary search failed, using replica")
//
// # Components
//
// Long-lived components keep a child logger tagged with their name:
//
//	log := logging.WithComponent("ingest")
//	log.Info().Str("topic", topic).Msg("Subscribed")
//
// # slog Bridge
//
// suture (via sutureslog) and Watermill expect a *slog.Logger. NewSlogLogger
// returns one that writes through zerolog, so those libraries share the same
// output stream and level.
//
// # Environment
//
// Configuration normally arrives through internal/config (LOG_LEVEL, LOG_FORMAT,
// LOG_CALLER). Before Init is called the logger writes JSON at info level to stderr.
package logging
