// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package ingest

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/discovery/internal/eventprocessor"
	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/metrics"
)

// correlationMetadataKey lets producers carry a correlation ID into our logs.
const correlationMetadataKey = "correlation_id"

// Handler returns the Watermill consumer for content events. It always
// returns nil: a bad or unappliable event is logged, counted and acked.
func (s *Service) Handler() message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := messageContext(msg)
		topic := message.SubscribeTopicFromCtx(msg.Context())
		log := logging.Ctx(ctx).With().
			Str("message_uuid", msg.UUID).
			Str("topic", topic).
			Logger()

		event, err := eventprocessor.DeserializeEvent(topic, msg.Payload)
		if err != nil {
			metrics.RecordIngestFailure("decode")
			log.Warn().Err(err).Int("payload_bytes", len(msg.Payload)).Msg("Dropping undecodable content event")
			return nil
		}

		if err := s.Apply(ctx, event); err != nil {
			log.Error().Err(err).
				Str("event", string(event.Type)).
				Str("content_id", event.Record.ContentID).
				Msg("Content event not applied, replica left stale")
		}
		return nil
	}
}

// Register adds one consumer per content subject to r. subscribers maps each
// event type to the subscriber consuming its subject; missing entries are
// skipped.
func (s *Service) Register(r *eventprocessor.Router, subscribers map[eventprocessor.EventType]message.Subscriber) {
	for _, t := range []eventprocessor.EventType{eventprocessor.EventContentCreated, eventprocessor.EventContentUpdated} {
		sub, ok := subscribers[t]
		if !ok || sub == nil {
			continue
		}
		r.AddConsumerHandler("ingest-"+string(t), t.Subject(), sub, s.Handler())
	}
}

func messageContext(msg *message.Message) context.Context {
	ctx := msg.Context()
	if id := msg.Metadata.Get(correlationMetadataKey); id != "" {
		return logging.ContextWithCorrelationID(ctx, id)
	}
	return logging.ContextWithNewCorrelationID(ctx)
}
