// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package eventprocessor

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Serializer handles event encoding/decoding for NATS messages.
type Serializer struct{}

// NewSerializer creates a new serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal validates the event and encodes it as an envelope.
func (s *Serializer) Marshal(event *ContentEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a payload received on subject. A payload with a "record"
// key is an envelope; anything else is a bare ContentRecord typed by the
// subject. The returned event is validated.
func (s *Serializer) Unmarshal(subject string, data []byte) (*ContentEvent, error) {
	var probe struct {
		Type   EventType       `json:"type"`
		Record json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}

	event := &ContentEvent{}
	body := data
	if len(probe.Record) > 0 {
		event.Type = probe.Type
		body = probe.Record
	}
	if err := json.Unmarshal(body, &event.Record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}

	if event.Type == "" {
		t, ok := EventTypeForSubject(subject)
		if !ok {
			return nil, fmt.Errorf("%w: subject %q", ErrUnknownEvent, subject)
		}
		event.Type = t
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

// SerializeEvent is a convenience function that marshals an event to JSON.
func SerializeEvent(event *ContentEvent) ([]byte, error) {
	return NewSerializer().Marshal(event)
}

// DeserializeEvent is a convenience function that decodes a payload from subject.
func DeserializeEvent(subject string, data []byte) (*ContentEvent, error) {
	return NewSerializer().Unmarshal(subject, data)
}
