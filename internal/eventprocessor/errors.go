// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package eventprocessor

import "errors"

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnknownEvent is returned when neither the envelope nor the subject names a
// content event type.
var ErrUnknownEvent = errors.New("unknown content event type")

// ErrInvalidEvent is returned for a payload that decodes but fails validation.
var ErrInvalidEvent = errors.New("invalid content event")
