// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package validation

import (
	"fmt"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type queryStruct struct {
	UserID   string   `json:"userId" validate:"required,notblank"`
	Keywords string   `json:"keywords" validate:"omitempty,max=16"`
	Limit    int      `json:"limit" validate:"gte=0,lte=50"`
	Order    string   `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Tags     []string `json:"tags" validate:"max=2"`
	Internal string   `json:"-" validate:"omitempty,max=1"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input queryStruct
	}{
		{"minimum", queryStruct{UserID: "u1"}},
		{"all fields", queryStruct{UserID: "u1", Keywords: "ai", Limit: 50, Order: "asc", Tags: []string{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     queryStruct
		wantField string
		wantTag   string
	}{
		{"missing user", queryStruct{}, "userId", "required"},
		{"blank user", queryStruct{UserID: "   "}, "userId", "notblank"},
		{"keywords too long", queryStruct{UserID: "u", Keywords: strings.Repeat("k", 17)}, "keywords", "max"},
		{"negative limit", queryStruct{UserID: "u", Limit: -1}, "limit", "gte"},
		{"limit too high", queryStruct{UserID: "u", Limit: 51}, "limit", "lte"},
		{"bad order", queryStruct{UserID: "u", Order: "up"}, "sortOrder", "oneof"},
		{"too many tags", queryStruct{UserID: "u", Tags: []string{"a", "b", "c"}}, "tags", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			if !err.Has(tt.wantField, tt.wantTag) {
				t.Errorf("expected error on field %s with rule %s, got: %+v", tt.wantField, tt.wantTag, err.Fields)
			}
		})
	}
}

func TestMessagesUseJSONNames(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&queryStruct{UserID: "u", Tags: []string{"a", "b", "c"}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got, want := err.Error(), "tags must be at most 2 items"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDetails(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&queryStruct{Limit: 99, Order: "sideways"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields, ok := err.Details()["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Fatalf("Details()[fields] = %v, want 3 entries", err.Details()["fields"])
	}
	if fields[0].Field != "userId" || fields[0].Message != "userId is required" {
		t.Errorf("first field = %+v", fields[0])
	}
	if fields[2].Param != "asc desc" {
		t.Errorf("oneof param = %q", fields[2].Param)
	}

	if (&RequestValidationError{}).Details() != nil {
		t.Error("empty error should carry no details")
	}
}

func TestAsRequestValidationError(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&queryStruct{})
	wrapped := fmt.Errorf("decode payload: %w", verr)

	got, ok := AsRequestValidationError(wrapped)
	if !ok || got != verr {
		t.Errorf("AsRequestValidationError() = %v, %v", got, ok)
	}
	if _, ok := AsRequestValidationError(fmt.Errorf("plain")); ok {
		t.Error("plain error should not unwrap to a validation error")
	}
}

type nestedStruct struct {
	Filters filterStruct `json:"filters"`
}

type filterStruct struct {
	Type string `json:"type" validate:"omitempty,oneof=podcast documentary"`
}

func TestNestedStructValidation(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&nestedStruct{Filters: filterStruct{Type: "podcast"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateStruct(&nestedStruct{Filters: filterStruct{Type: "movie"}})
	if err == nil {
		t.Fatal("expected error for invalid nested field")
	}
	if err.Fields[0].Field != "type" {
		t.Errorf("Field = %q, want type", err.Fields[0].Field)
	}
}
