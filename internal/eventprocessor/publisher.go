// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/discovery/internal/metrics"
)

// Publisher sends content events. The service itself only consumes them; the
// publisher backs the CLI publish command and integration tests.
type Publisher struct {
	publisher message.Publisher
	mu        sync.RWMutex
	closed    bool
}

// NewPublisher creates a Watermill JetStream publisher.
func NewPublisher(cfg PublisherConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = WatermillLogger()
	}

	natsOpts := append(
		connectionOptions("discovery-publisher", cfg.MaxReconnects, cfg.ReconnectWait, logger),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
	)

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // Stream is pre-created by StreamInitializer
			TrackMsgId:    cfg.EnableTrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return &Publisher{publisher: pub}, nil
}

// Publish sends msg to topic. The message UUID doubles as Nats-Msg-Id so the
// stream's duplicate window drops retried publishes.
func (p *Publisher) Publish(_ context.Context, topic string, msg *message.Message) (err error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	defer func() { metrics.RecordEventPublished(topic, err) }()

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	return p.publisher.Publish(topic, msg)
}

// PublishEvent validates, serializes and publishes a content event on its subject.
func (p *Publisher) PublishEvent(ctx context.Context, event *ContentEvent) error {
	data, err := SerializeEvent(event)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("content_id", event.Record.ContentID)
	msg.SetContext(ctx)

	return p.Publish(ctx, event.Topic(), msg)
}

// Close closes the underlying publisher. Further publishes fail with ErrPublisherClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
