// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

/*
Package commands maps the discovery command contracts onto the query engine
and the preference tracker.

A command is a name plus a JSON payload. The Dispatcher decodes the payload,
validates it with the shared validator, runs the operation and encodes the
result. It does not know about transports.

The Responder exposes the Dispatcher over NATS request-reply. Each command is
served on "<prefix>.<command>" through one queue group, so several replicas
of the service share the load:

	discovery.cmd.get_trending        {"limit": 5}
	discovery.cmd.search_content      {"keywords": "robots", "category": "Tech"}
	discovery.cmd.manual_search       {"page": 2, "limit": 10, "sortBy": "title"}

Replies are always an envelope:

	{"data": [...]}
	{"error": {"code": "VALIDATION_ERROR", "message": "userId is required"}}

Primary search outages never reach the caller as errors; the engine degrades
to the replica or to trending first.
*/
package commands
