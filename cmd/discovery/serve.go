// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/discovery/internal/api"
	"github.com/tomtom215/discovery/internal/config"
	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/supervisor"
	"github.com/tomtom215/discovery/internal/supervisor/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the discovery service",
		Long: `Run the discovery service until SIGINT or SIGTERM.

The service consumes content events from JetStream, answers commands on
<command_prefix>.<command> and serves /healthz, /readyz and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// serve builds the application, runs it under the supervisor tree and
// closes everything once ctx is done.
func serve(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("search_enabled", cfg.Search.Enabled).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting discovery service")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.Error().Err(err).Msg("Shutdown finished with errors")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	health := api.NewHealth(version)
	health.AddCheck("replica", a.replica.Ping)
	if a.redis != nil {
		health.AddCheck("cache", a.redis.Ping)
	}

	tree.AddDataService(a.cache)
	tree.AddDataService(a.prefs)

	if cfg.NATS.Enabled {
		nats, err := initNATS(ctx, &cfg.NATS, a.ingest, a.dispatcher)
		if err != nil {
			return fmt.Errorf("initialize NATS: %w", err)
		}
		// Runs after the tree stopped the router and responder, before the stores close.
		a.onClose("nats", func() error {
			nats.Shutdown(context.Background())
			return nil
		})
		health.AddCheck("nats", nats.Ready)

		tree.AddMessagingService(nats.router)
		tree.AddMessagingService(nats.responder)
	} else {
		logging.Warn().Msg("NATS disabled: no content events will be ingested and no commands served")
	}

	server := api.NewServer(&cfg.Server, api.NewRouter(health))
	tree.AddAPIService(services.NewHTTPServerService("ops-http", server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", api.Addr(&cfg.Server)).Msg("Ops endpoints listening")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logging.Warn().Int("services", len(report)).Msg("Some services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	logging.Info().Msg("Discovery service stopped")
	return nil
}
