// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

/*
Package api serves the operations HTTP surface of the discovery service.

Discovery commands travel over NATS (see package commands). This package only
exposes what an orchestrator and a metrics scraper need:

  - GET /healthz  liveness, always 200 while the process runs
  - GET /readyz   readiness, 503 when any registered check fails
  - GET /metrics  Prometheus exposition

Routing uses Chi (github.com/go-chi/chi/v5). Every request gets a request ID
and a correlation ID in its logging context.
*/
package api
