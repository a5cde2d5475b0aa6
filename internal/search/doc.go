// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package search defines the ranked query Backend and its primary
// implementation on a bleve full-text index.
//
// BleveBackend stores every record as a flattened document plus its JSON
// source. Ranking queries always carry a status=published clause, so
// should-clauses only ever boost.
//
// Guarded wraps any Backend with a per-call timeout and a
// gobreaker circuit breaker. The query engine uses it to decide when to
// fall back to the DuckDB replica:
//
//	primary := search.NewGuarded(idx, search.DefaultBreakerConfig("search-primary"), 1500*time.Millisecond)
//	recs, err := primary.Search(ctx, q, 10)
//	if err != nil {
//		recs, err = replica.Search(ctx, q, 10)
//	}
package search
