// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

// Package validation validates command payloads and content events using
// go-playground/validator v10.
//
// A single validator instance is shared process-wide. Error field names come
// from json tags, so a failure on SearchContentRequest.Keywords is reported as
// "keywords", the name the caller actually sent.
//
// # Custom Tags
//
//   - notblank: string must be non-empty after trimming whitespace
//
// # Error Types
//
// FieldError is one failed rule. RequestValidationError aggregates them;
// its Details feed the VALIDATION_ERROR command reply:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    body := ErrorBody{Code: validation.ErrorCode, Message: verr.Error(), Details: verr.Details()}
//	    ...
//	}
//
// AsRequestValidationError recovers the aggregate from a wrapped error.
package validation
