// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package eventprocessor

import (
	"fmt"

	"github.com/tomtom215/discovery/internal/models"
	"github.com/tomtom215/discovery/internal/validation"
)

// EventType names a content change announced by the content-management service.
type EventType string

const (
	EventContentCreated EventType = "content_created"
	EventContentUpdated EventType = "content_updated"
)

// NATS subjects carrying content events. Both live in the CONTENT stream.
const (
	SubjectContentCreated = "content.created"
	SubjectContentUpdated = "content.updated"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return t == EventContentCreated || t == EventContentUpdated
}

// Subject returns the NATS subject the event is published on.
func (t EventType) Subject() string {
	switch t {
	case EventContentCreated:
		return SubjectContentCreated
	case EventContentUpdated:
		return SubjectContentUpdated
	default:
		return ""
	}
}

// EventTypeForSubject maps a subject back to its event type.
func EventTypeForSubject(subject string) (EventType, bool) {
	switch subject {
	case SubjectContentCreated:
		return EventContentCreated, true
	case SubjectContentUpdated:
		return EventContentUpdated, true
	default:
		return "", false
	}
}

// ContentEvent is the optional envelope around a ContentRecord. Producers may
// also publish the bare record, in which case the subject carries the type.
type ContentEvent struct {
	Type   EventType            `json:"type"`
	Record models.ContentRecord `json:"record"`
}

// NewContentEvent wraps rec for publishing.
func NewContentEvent(t EventType, rec models.ContentRecord) *ContentEvent {
	return &ContentEvent{Type: t, Record: rec}
}

// Topic returns the subject for this event.
func (e *ContentEvent) Topic() string {
	return e.Type.Subject()
}

// Validate normalizes the record and checks the event is applicable.
func (e *ContentEvent) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	e.Record.Normalize()
	if verr := validation.ValidateStruct(&e.Record); verr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, verr)
	}
	return nil
}
