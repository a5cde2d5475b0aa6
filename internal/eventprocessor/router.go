// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/discovery/internal/metrics"
)

// consumerRegistration is a handler waiting for the next Serve.
type consumerRegistration struct {
	name       string
	topic      string
	subscriber message.Subscriber
	handler    message.NoPublishHandlerFunc
}

// Router runs consumer handlers on a Watermill router with fire-and-forget
// semantics: every message is acked, including ones whose handler failed or
// panicked. Content events are notifications and have no retry path.
//
// Handlers are registered once and a fresh Watermill router is built on every
// Serve, so a supervisor restart resumes consumption.
type Router struct {
	config   RouterConfig
	logger   watermill.LoggerAdapter
	mu       sync.Mutex
	handlers []consumerRegistration
	router   *message.Router
	running  bool
}

// NewRouter creates a Router.
func NewRouter(cfg *RouterConfig, logger watermill.LoggerAdapter) *Router {
	if logger == nil {
		logger = WatermillLogger()
	}
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}
	return &Router{config: *cfg, logger: logger}
}

// AddConsumerHandler registers a handler that doesn't produce output messages.
// It takes effect on the next Serve.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, consumerRegistration{
		name:       name,
		topic:      subscribeTopic,
		subscriber: subscriber,
		handler:    handler,
	})
}

// Handlers returns the number of registered handlers.
func (r *Router) Handlers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// build assembles the Watermill router. Middleware order is outer to inner:
// ackAlways, then Recoverer.
func (r *Router) build() (*message.Router, error) {
	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: r.config.CloseTimeout}, r.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(r.ackAlways, middleware.Recoverer)

	for _, h := range r.handlers {
		wmRouter.AddConsumerHandler(h.name, h.topic, h.subscriber, h.handler)
	}
	return wmRouter, nil
}

// ackAlways converts a handler error into an ack. The failure is logged and
// counted.
func (r *Router) ackAlways(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			r.logger.Error("Content event handler failed, acking", err, watermill.LogFields{
				"message_uuid": msg.UUID,
				"handler":      message.HandlerNameFromCtx(msg.Context()),
			})
			metrics.RecordIngestFailure("handler")
			return nil, nil
		}
		return out, nil
	}
}

// Serve runs the router until ctx is done. Implements suture.Service.
func (r *Router) Serve(ctx context.Context) error {
	r.mu.Lock()
	if len(r.handlers) == 0 {
		r.mu.Unlock()
		return errors.New("router has no handlers")
	}
	wmRouter, err := r.build()
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.router = wmRouter
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	err = wmRouter.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Running returns a channel that closes when the current router is running.
// It returns nil before the first Serve.
func (r *Router) Running() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.router == nil {
		return nil
	}
	return r.router.Running()
}

// IsRunning returns whether the router is currently processing messages.
func (r *Router) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// String names the router for supervisor logs.
func (r *Router) String() string { return "event-router" }
