// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/discovery/internal/logging"
)

// connectionOptions returns the reconnect and logging options shared by every
// NATS connection the service opens.
func connectionOptions(name string, maxReconnects int, wait time.Duration, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name(name),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(maxReconnects),
		natsgo.ReconnectWait(wait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, watermill.LogFields{"connection": name})
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"connection": name,
				"url":        nc.ConnectedUrl(),
			})
		}),
	}
}

// Connect opens a plain NATS connection for JetStream management and the
// command responder.
func Connect(url, name string) (*natsgo.Conn, error) {
	nc, err := natsgo.Connect(url, connectionOptions(name, -1, 2*time.Second, WatermillLogger())...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// WatermillLogger bridges Watermill logging onto the service logger.
func WatermillLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}
