// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

/*
Package supervisor runs the long-lived parts of the discovery service under a
suture (github.com/thejerf/suture/v4) supervisor tree.

The tree has three layers so a failure in one does not take down the others:

	discovery (root)
	├── data-layer        cache janitor, preference store GC
	├── messaging-layer   event router, command responder
	└── api-layer         ops HTTP server

A service that returns an error is restarted with backoff. Supervisor events
are logged through sutureslog on the slog bridge of package logging.

Stores (DuckDB, Badger, Bleve) and the NATS connection are not services: they
are opened before the tree starts and closed by the caller after Serve
returns.
*/
package supervisor
