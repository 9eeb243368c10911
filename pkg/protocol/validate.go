// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package protocol - request validation.
//
// Validation uses go-playground/validator with one custom rule, maxbytes,
// which bounds free-text fields by byte length (not rune count) so that
// oversized payloads are rejected before they reach the network.
package protocol

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Size Limits
// =============================================================================

const (
	// MaxTextFieldBytes is the maximum size of any free-text request field
	// (query text, selected code). Bounds memory on both ends of the wire.
	MaxTextFieldBytes = 64 * 1024 // 64KB

	// DefaultMaxResponseLength is the default response length hint sent
	// with a query, in characters.
	DefaultMaxResponseLength = 1000
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// protoValidate is the validator for protocol request types.
// Initialized in init() with the custom maxbytes rule.
var protoValidate *validator.Validate

func init() {
	protoValidate = validator.New()
	_ = protoValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes enforces MaxTextFieldBytes on a string field.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxTextFieldBytes
}

// =============================================================================
// Validation Entry Points
// =============================================================================

// Validate checks a QueryRequest against the protocol rules.
//
// # Description
//
// A request passes when it carries a known query type, non-empty query
// text and code context fields, and all text fields are within
// MaxTextFieldBytes. Struct-tag failures are wrapped with field context so
// callers can surface them directly.
//
// # Outputs
//
//   - error: nil when valid, otherwise a descriptive validation error
func (r *QueryRequest) Validate() error {
	if !r.QueryType.Valid() {
		return fmt.Errorf("invalid query_type %q", r.QueryType)
	}
	if err := protoValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid query request: %w", err)
	}
	return nil
}

// Validate checks an IngestRequest against the protocol rules.
func (r *IngestRequest) Validate() error {
	if err := protoValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid ingest request: %w", err)
	}
	return nil
}
