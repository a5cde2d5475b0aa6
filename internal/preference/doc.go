// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package preference stores user preferences in Badger and applies
// interactions and explicit favorite updates to them.
//
// Every mutation invalidates the user's recommendations_<userId> cache
// namespace so the next recommendation observes the new watch list.
// The category and tag weights are recorded but not yet used for ranking.
package preference
