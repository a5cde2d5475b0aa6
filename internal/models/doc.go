// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package models defines the data types shared by the discovery service:
// the content replica record, per-user preferences, categories and the
// query shapes accepted by the command contracts.
//
// JSON field names are camelCase to match the message payloads exchanged with
// the content-management and client collaborators.
package models
