// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package commands

import (
	"context"
	"errors"

	"github.com/tomtom215/discovery/internal/preference"
	"github.com/tomtom215/discovery/internal/validation"
)

var (
	// ErrUnknownCommand is returned for a command name with no handler.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidPayload is returned when a payload is not valid JSON for its command.
	ErrInvalidPayload = errors.New("invalid command payload")

	// ErrRateLimited is returned when a command's request budget is spent.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Reply error codes.
const (
	CodeOK             = "ok"
	CodeValidation     = validation.ErrorCode
	CodeInvalidPayload = "INVALID_PAYLOAD"
	CodeUnknownCommand = "UNKNOWN_COMMAND"
	CodeNotFound       = "NOT_FOUND"
	CodeTimeout        = "TIMEOUT"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorBody is the error half of a reply envelope.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorCode classifies err into a reply code. nil maps to CodeOK.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrUnknownCommand):
		return CodeUnknownCommand
	case errors.Is(err, ErrInvalidPayload):
		return CodeInvalidPayload
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, preference.ErrEmptyUserID):
		return CodeValidation
	case errors.Is(err, preference.ErrContentNotFound):
		return CodeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	}
	if _, ok := validation.AsRequestValidationError(err); ok {
		return CodeValidation
	}
	return CodeInternal
}

// NewErrorBody builds the reply error for err. Internal failures get a
// generic message so storage details stay in the logs.
func NewErrorBody(err error) *ErrorBody {
	if ve, ok := validation.AsRequestValidationError(err); ok {
		return &ErrorBody{Code: CodeValidation, Message: ve.Error(), Details: ve.Details()}
	}

	code := ErrorCode(err)
	switch code {
	case CodeInternal:
		return &ErrorBody{Code: code, Message: "internal error"}
	case CodeTimeout:
		return &ErrorBody{Code: code, Message: "command deadline exceeded"}
	default:
		return &ErrorBody{Code: code, Message: err.Error()}
	}
}
