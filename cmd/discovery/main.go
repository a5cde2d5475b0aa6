// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package main is the discovery service binary.
//
// The service keeps a replica of published content, answers search, trending,
// recommendation and manual-search commands over NATS request-reply, and
// invalidates its query cache when content events arrive on JetStream.
//
// Subcommands:
//
//	discovery serve      run the service under supervision
//	discovery reindex    rebuild the full-text index from the replica
//	discovery publish    publish a content event from a JSON file
//	discovery version    print build information
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file (CONFIG_PATH or ./config.yaml), then environment variables.
package main

import (
	"context"
	"os"

	"github.com/tomtom215/discovery/internal/logging"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logging.Error().Err(err).Msg("discovery exited with error")
		os.Exit(1)
	}
}
