// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package client

import (
	"bytes"
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

// ErrorType categorizes transport failures for programmatic handling.
//
// Callers branch on the type to decide how to present a failure:
// ErrorTimeout and ErrorNetworkUnavailable point at the environment,
// ErrorAPI carries the backend's own words, ErrorInvalidResponse means the
// backend answered with something this client cannot parse.
type ErrorType int

const (
	// ErrorTimeout indicates the call exceeded the configured timeout.
	ErrorTimeout ErrorType = iota

	// ErrorNetworkUnavailable indicates no response reached the client
	// (connection refused, DNS failure, offline).
	ErrorNetworkUnavailable

	// ErrorAPI indicates the backend responded with a non-2xx status and
	// a structured error payload.
	ErrorAPI

	// ErrorInvalidResponse indicates a 2xx response whose body could not
	// be decoded.
	ErrorInvalidResponse
)

// String returns the error type as a string for logging.
func (t ErrorType) String() string {
	switch t {
	case ErrorTimeout:
		return "TIMEOUT"
	case ErrorNetworkUnavailable:
		return "NETWORK_UNAVAILABLE"
	case ErrorAPI:
		return "API_ERROR"
	case ErrorInvalidResponse:
		return "INVALID_RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// ClientError provides structured error information for backend calls.
//
// Message is what a UI shows; Detail holds the technical trace a UI keeps
// behind a disclosure control; Remediation suggests what the user can do.
type ClientError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType

	// Message is a human-readable error description. For ErrorAPI this is
	// the server-supplied message when one was present.
	Message string

	// Detail provides technical information for debugging.
	Detail string

	// Remediation suggests how to fix the issue.
	Remediation string

	// StatusCode is the HTTP status for ErrorAPI, zero otherwise.
	StatusCode int

	// RequestID echoes the backend's request id when the error payload
	// carried one.
	RequestID string
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	return e.Message
}

// FullError returns a detailed error message including remediation.
func (e *ClientError) FullError() string {
	var buf bytes.Buffer
	buf.WriteString(e.Message)
	if e.StatusCode != 0 {
		buf.WriteString(fmt.Sprintf(" (HTTP %d)", e.StatusCode))
	}
	if e.Detail != "" {
		buf.WriteString("\n\nDetails: ")
		buf.WriteString(e.Detail)
	}
	if e.Remediation != "" {
		buf.WriteString("\n\nTo fix:\n")
		buf.WriteString(e.Remediation)
	}
	return buf.String()
}

// AsClientError unwraps err to a *ClientError when possible.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
