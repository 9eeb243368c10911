// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package protocol defines the wire contracts between the Code Whisperer
// host (editor extension or CLI) and its backend.
//
// This file contains the request and response types for the query, ingest,
// health, and status operations. Validation rules live in validate.go.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// Query Types
// =============================================================================

// QueryType identifies the kind of analysis requested from the backend.
type QueryType string

const (
	QueryExplain  QueryType = "explain"
	QueryOptimize QueryType = "optimize"
	QueryDebug    QueryType = "debug"
	QueryRefactor QueryType = "refactor"
	QueryGenerate QueryType = "generate"
	QueryReview   QueryType = "review"
)

// AllQueryTypes lists every valid query type, in display order.
var AllQueryTypes = []QueryType{
	QueryExplain, QueryOptimize, QueryDebug,
	QueryRefactor, QueryGenerate, QueryReview,
}

// Valid reports whether t is a known query type.
func (t QueryType) Valid() bool {
	switch t {
	case QueryExplain, QueryOptimize, QueryDebug,
		QueryRefactor, QueryGenerate, QueryReview:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the query type.
func (t QueryType) String() string {
	return string(t)
}

// ParseQueryType converts user input to a QueryType.
//
// # Description
//
// Matching is case-insensitive. Empty or unrecognized input falls back to
// QueryExplain rather than failing: "explain" is the safe default for every
// surface that submits a query without choosing a type.
//
// # Inputs
//
//   - s: Raw query type string (e.g. "Debug", "optimize", "")
//
// # Outputs
//
//   - QueryType: The parsed type, or QueryExplain as fallback
//   - bool: true if s named a known type (or was empty)
func ParseQueryType(s string) (QueryType, bool) {
	if s == "" {
		return QueryExplain, true
	}
	t := QueryType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t, true
	}
	return QueryExplain, false
}

// =============================================================================
// Code Context
// =============================================================================

// CursorPosition is a zero-based line/column location in a document.
type CursorPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// CodeContext describes the code a query is about.
//
// A CodeContext is a value object: build it once per query and do not
// mutate it afterwards. FullFileContent is optional and is omitted entirely
// when the file exceeds the size cap (see orchestrator.MaxFullFileChars);
// it is never truncated, because a truncated file is worse context than no
// file at all.
type CodeContext struct {
	FilePath        string          `json:"file_path" validate:"required"`
	Language        string          `json:"language" validate:"required"`
	SelectedCode    string          `json:"selected_code" validate:"required,maxbytes"`
	FullFileContent string          `json:"full_file_content,omitempty"`
	CursorPosition  *CursorPosition `json:"cursor_position,omitempty"`
}

// =============================================================================
// Query Request / Response
// =============================================================================

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	QueryType         QueryType   `json:"query_type" validate:"required"`
	QueryText         string      `json:"query_text" validate:"required,maxbytes"`
	CodeContext       CodeContext `json:"code_context" validate:"required"`
	IncludeExamples   bool        `json:"include_examples"`
	MaxResponseLength int         `json:"max_response_length,omitempty" validate:"gte=0"`
}

// NewQueryRequest builds a QueryRequest with the protocol defaults applied:
// include_examples on and max_response_length at DefaultMaxResponseLength.
func NewQueryRequest(queryType QueryType, queryText string, ctx CodeContext) *QueryRequest {
	if !queryType.Valid() {
		queryType = QueryExplain
	}
	return &QueryRequest{
		QueryType:         queryType,
		QueryText:         queryText,
		CodeContext:       ctx,
		IncludeExamples:   true,
		MaxResponseLength: DefaultMaxResponseLength,
	}
}

// CodeSuggestion is a single suggestion inside a QueryResponse.
type CodeSuggestion struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CodeSnippet string  `json:"code_snippet,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// QueryResponse is the body returned by POST /api/v1/query.
//
// Suggestions and CodeExamples are never nil after Normalize; an empty
// list is encoded as [] on the wire, not omitted.
type QueryResponse struct {
	QueryID          string           `json:"query_id"`
	QueryType        QueryType        `json:"query_type"`
	Explanation      string           `json:"explanation"`
	Suggestions      []CodeSuggestion `json:"suggestions"`
	CodeExamples     []string         `json:"code_examples"`
	Confidence       float64          `json:"confidence"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
}

// Normalize enforces the response invariants in place:
// confidences clamped to [0,1], slices non-nil, processing time
// non-negative, and a query id present.
//
// Call this on every response that crossed the wire before handing it to
// presentation code. Backends are expected to uphold these invariants but
// the host does not trust them to.
func (r *QueryResponse) Normalize() {
	r.Confidence = ClampConfidence(r.Confidence)
	for i := range r.Suggestions {
		r.Suggestions[i].Confidence = ClampConfidence(r.Suggestions[i].Confidence)
	}
	if r.Suggestions == nil {
		r.Suggestions = []CodeSuggestion{}
	}
	if r.CodeExamples == nil {
		r.CodeExamples = []string{}
	}
	if r.ProcessingTimeMs < 0 {
		r.ProcessingTimeMs = 0
	}
	if r.QueryID == "" {
		r.QueryID = uuid.NewString()
	}
}

// ClampConfidence forces a confidence score into [0, 1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// =============================================================================
// Ingest Request / Response
// =============================================================================

// IngestRequest is the body of POST /api/v1/ingest.
type IngestRequest struct {
	FilePath  string            `json:"file_path" validate:"required"`
	Content   string            `json:"content" validate:"required"`
	Language  string            `json:"language" validate:"required"`
	ProjectID string            `json:"project_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// IngestResponse is the body returned by POST /api/v1/ingest.
type IngestResponse struct {
	IngestID            string `json:"ingest_id"`
	Status              string `json:"status"`
	ChunksCreated       int    `json:"chunks_created"`
	EmbeddingsGenerated int    `json:"embeddings_generated"`
	ProcessingTimeMs    int64  `json:"processing_time_ms"`
	Message             string `json:"message"`
}

// =============================================================================
// Health / Status / Error
// =============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Timestamp    string            `json:"timestamp,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Healthy reports whether the backend considers itself usable.
// The original backend reports "healthy"; "ok" is accepted for forward
// compatibility with simpler probe implementations.
func (h *HealthResponse) Healthy() bool {
	if h == nil {
		return false
	}
	switch strings.ToLower(h.Status) {
	case "healthy", "ok":
		return true
	default:
		return false
	}
}

// StatusResponse is the body of GET /status, used for connection
// diagnostics. Fields beyond ServiceStatus are implementation-defined and
// may be zero-valued on older backends.
type StatusResponse struct {
	ServiceStatus     string `json:"service_status"`
	APIVersion        string `json:"api_version"`
	ActiveConnections int    `json:"active_connections"`
	TotalQueries      int    `json:"total_queries"`
	TotalIngestions   int    `json:"total_ingestions"`
	KnowledgeBaseSize int    `json:"knowledge_base_size"`
	LastUpdated       string `json:"last_updated,omitempty"`
}

// ErrorResponse is the structured error body backends return on non-2xx.
type ErrorResponse struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// DisplayMessage returns the text a UI should show for this error body:
// the server's own message when present, otherwise the error code, and a
// last-resort fallback derived from the HTTP status.
func (e *ErrorResponse) DisplayMessage(httpStatus int) string {
	if e != nil && e.Message != "" {
		return e.Message
	}
	if e != nil && e.Error != "" {
		return e.Error
	}
	return fmt.Sprintf("backend returned HTTP %d", httpStatus)
}
