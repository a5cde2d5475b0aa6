// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package discovery is the query engine behind every read command.
//
// Each ranked operation checks the tracked cache, then asks the primary
// search backend, then the DuckDB replica. Recommendations fall back once
// more to trending. A primary outage degrades the answer but never fails
// the call.
//
// Cache namespaces written here:
//
//	trending                  trending_<limit>
//	recommendations_<userId>  recommendations_<userId>_<limit> (also under recommendations)
//	search                    search_<sha256>
//	similar_<contentId>       similar_<contentId>_<limit>
//	categories                all_categories
package discovery
