// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/metrics"
)

// CorrelationHeader carries the caller's correlation ID on a request.
const CorrelationHeader = "X-Correlation-ID"

// Reply is the envelope sent back for every request.
type Reply struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

// ResponderConfig configures the NATS command responder.
type ResponderConfig struct {
	// Prefix is prepended to command names: "<Prefix>.<command>".
	Prefix string

	// Queue is the queue group shared by every service replica.
	Queue string

	// Deadline bounds each command. Zero means no deadline.
	Deadline time.Duration

	// RateLimits caps a command at N requests per RateWindow on this
	// replica. Commands that are absent or mapped to 0 are not throttled.
	RateLimits map[string]int
	RateWindow time.Duration
}

// Responder serves the Dispatcher over NATS request-reply.
type Responder struct {
	nc       *natsgo.Conn
	d        *Dispatcher
	config   ResponderConfig
	limiters map[string]*rate.Limiter
}

// NewResponder returns a Responder. It subscribes only when served.
func NewResponder(nc *natsgo.Conn, d *Dispatcher, cfg ResponderConfig) *Responder {
	cfg.Prefix = strings.TrimSuffix(cfg.Prefix, ".")
	return &Responder{nc: nc, d: d, config: cfg, limiters: newLimiters(cfg.RateLimits, cfg.RateWindow)}
}

// newLimiters builds one token bucket per throttled command. A bucket holds
// n tokens and refills n per window.
func newLimiters(limits map[string]int, window time.Duration) map[string]*rate.Limiter {
	limiters := make(map[string]*rate.Limiter, len(limits))
	if window <= 0 {
		return limiters
	}
	for command, n := range limits {
		if n <= 0 {
			continue
		}
		limiters[command] = rate.NewLimiter(rate.Every(window/time.Duration(n)), n)
	}
	return limiters
}

// allow takes a token for command. Unthrottled commands always pass.
func (r *Responder) allow(command string) bool {
	l, ok := r.limiters[command]
	return !ok || l.Allow()
}

// Subject returns the subject command is served on.
func (r *Responder) Subject(command string) string {
	return r.config.Prefix + "." + command
}

// Serve implements suture.Service. It subscribes every command, blocks until
// ctx is canceled, then drains the subscriptions.
func (r *Responder) Serve(ctx context.Context) error {
	subs := make([]*natsgo.Subscription, 0, len(r.d.Commands()))
	defer func() {
		for _, sub := range subs {
			if err := sub.Drain(); err != nil {
				logging.Warn().Err(err).Str("subject", sub.Subject).Msg("Command subscription drain failed")
			}
		}
	}()

	for _, command := range r.d.Commands() {
		command := command
		sub, err := r.nc.QueueSubscribe(r.Subject(command), r.config.Queue, func(msg *natsgo.Msg) {
			r.handle(ctx, command, msg)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", r.Subject(command), err)
		}
		subs = append(subs, sub)
	}
	if err := r.nc.Flush(); err != nil {
		return fmt.Errorf("flush command subscriptions: %w", err)
	}

	logging.Info().
		Str("prefix", r.config.Prefix).
		Str("queue", r.config.Queue).
		Int("commands", len(subs)).
		Msg("Command responder started")

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer for suture logs.
func (r *Responder) String() string { return "command-responder" }

func (r *Responder) handle(parent context.Context, command string, msg *natsgo.Msg) {
	ctx := context.WithoutCancel(parent)
	if id := msg.Header.Get(CorrelationHeader); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	} else {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	if r.config.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Deadline)
		defer cancel()
	}

	reply := Reply{}
	var data []byte
	err := ErrRateLimited
	if r.allow(command) {
		data, err = r.d.Dispatch(ctx, command, msg.Data)
	} else {
		metrics.RecordCommand(command, CodeRateLimited, 0)
	}
	if err != nil {
		reply.Error = NewErrorBody(err)
		if reply.Error.Code == CodeInternal || reply.Error.Code == CodeTimeout {
			logging.Ctx(ctx).Error().Err(err).Str("command", command).Msg("Command failed")
		}
	} else {
		reply.Data = data
	}

	out, err := json.Marshal(reply)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("command", command).Msg("Failed to encode command reply")
		return
	}
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(out); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("command", command).Msg("Failed to send command reply")
	}
}
