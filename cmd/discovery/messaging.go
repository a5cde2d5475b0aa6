// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/discovery/internal/commands"
	"github.com/tomtom215/discovery/internal/config"
	"github.com/tomtom215/discovery/internal/eventprocessor"
	"github.com/tomtom215/discovery/internal/ingest"
	"github.com/tomtom215/discovery/internal/logging"
)

// natsComponents is everything that talks to NATS: the optional embedded
// server, the plain connection for stream setup and commands, the ingest
// subscribers and router, and the command responder.
type natsComponents struct {
	server      *eventprocessor.EmbeddedServer
	conn        *natsgo.Conn
	subscribers []*eventprocessor.Subscriber
	router      *eventprocessor.Router
	responder   *commands.Responder
	streams     *eventprocessor.StreamInitializer
}

// initNATS starts the embedded server when configured, ensures the content
// stream and builds the router and responder. Nothing consumes until the
// router and responder are served.
func initNATS(ctx context.Context, cfg *config.NATSConfig, svc *ingest.Service, d *commands.Dispatcher) (_ *natsComponents, err error) {
	nc := &natsComponents{}
	defer func() {
		if err != nil {
			nc.Shutdown(context.Background())
		}
	}()

	url := cfg.URL
	if cfg.EmbeddedServer {
		serverCfg := eventprocessor.ServerConfigFrom(cfg)
		if nc.server, err = eventprocessor.NewEmbeddedServer(&serverCfg); err != nil {
			return nil, err
		}
		url = nc.server.ClientURL()
	} else {
		logging.Info().Str("url", url).Msg("Using external NATS server")
	}

	if nc.conn, err = eventprocessor.Connect(url, "discovery"); err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc.conn)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	streamCfg := eventprocessor.StreamConfigFrom(cfg)
	if nc.streams, err = eventprocessor.NewStreamInitializer(js, &streamCfg); err != nil {
		return nil, err
	}
	stream, err := nc.streams.EnsureStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure content stream: %w", err)
	}
	info := stream.CachedInfo()
	logging.Info().
		Str("name", info.Config.Name).
		Strs("subjects", info.Config.Subjects).
		Dur("max_age", info.Config.MaxAge).
		Msg("JetStream stream ready")

	logger := eventprocessor.WatermillLogger()
	subCfg := eventprocessor.SubscriberConfigFrom(cfg, url)
	subs := make(map[eventprocessor.EventType]message.Subscriber, 2)
	for _, t := range []eventprocessor.EventType{eventprocessor.EventContentCreated, eventprocessor.EventContentUpdated} {
		eventCfg := subCfg.ForEvent(t)
		sub, err := eventprocessor.NewSubscriber(&eventCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("subscriber for %s: %w", t, err)
		}
		nc.subscribers = append(nc.subscribers, sub)
		subs[t] = sub
	}

	routerCfg := eventprocessor.DefaultRouterConfig()
	if cfg.CloseTimeout > 0 {
		routerCfg.CloseTimeout = cfg.CloseTimeout
	}
	nc.router = eventprocessor.NewRouter(&routerCfg, logger)
	svc.Register(nc.router, subs)

	nc.responder = commands.NewResponder(nc.conn, d, commands.ResponderConfig{
		Prefix:   cfg.CommandPrefix,
		Queue:    cfg.CommandQueue,
		Deadline:   cfg.CommandDeadline,
		RateLimits: cfg.CommandRateLimits,
		RateWindow: cfg.CommandRateWindow,
	})
	return nc, nil
}

// Ready reports whether the connection is up and the content stream exists.
func (n *natsComponents) Ready(ctx context.Context) error {
	if n.conn == nil || !n.conn.IsConnected() {
		return errors.New("nats not connected")
	}
	if !n.streams.IsHealthy(ctx) {
		return errors.New("content stream unavailable")
	}
	return nil
}

// Shutdown closes subscribers, then the connection, then the embedded server.
// The router and responder must already be stopped.
func (n *natsComponents) Shutdown(ctx context.Context) {
	for _, sub := range n.subscribers {
		if err := sub.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close ingest subscriber")
		}
	}
	n.subscribers = nil

	if n.conn != nil {
		if err := n.conn.Drain(); err != nil {
			n.conn.Close()
		}
		n.conn = nil
	}

	if n.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := n.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("Embedded NATS server shutdown failed")
		}
		n.server = nil
	}
}
