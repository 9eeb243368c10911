// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package orchestrator coordinates one code-assistant query from editor
context to normalized result.

# Problem Statement

A query is only worth a network round trip when there is actually code to
ask about and a backend to ask. The orchestrator enforces that policy
before spending the round trip:

 1. Gate - the connection state machine must say connected; otherwise
    the user gets guidance immediately instead of a 30-second timeout.
 2. Policy A - no open document short-circuits to "no code file open".
 3. Policy B - a selection under MinSelectionChars falls back to the
    lines around the cursor (current line ± FallbackContextLines).
 4. Policy C - if even the fallback window is under MinAnalyzableChars,
    short-circuit to "no code selected".

Only a query that survives all four reaches the transport client.

# Query Lifecycle

	idle ──► validating ──► short-circuited ──► idle
	              │
	              └───────► dispatched ──► succeeded ──► idle
	                              └──────► failed ─────► idle

At most one query is in flight at a time; a submission while busy
short-circuits with GuidanceBusy. There are no automatic retries - a
failed query requires explicit resubmission.

# Results

Every outcome is normalized into a Result and republished through the
optional Listener. Transport errors never cross this boundary raw: the
user-facing message and the technical detail are separated so the
presentation layer can hide the trace behind a disclosure control.
*/
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/codewhisperer-ai/whisper/pkg/client"
	"github.com/codewhisperer-ai/whisper/pkg/connstate"
	"github.com/codewhisperer-ai/whisper/pkg/protocol"
)

// =============================================================================
// Policy Constants
// =============================================================================

const (
	// MinSelectionChars is the selection length below which the fallback
	// context window is used instead.
	MinSelectionChars = 5

	// MinAnalyzableChars is the minimum code length worth sending to the
	// backend, applied after the fallback window.
	MinAnalyzableChars = 3

	// FallbackContextLines is how many lines either side of the cursor
	// the fallback window includes.
	FallbackContextLines = 2

	// MaxFullFileChars caps the full file content attached to a query,
	// in characters. Larger files are omitted entirely, never truncated:
	// a cut-off file reads as corrupted context on the backend side.
	MaxFullFileChars = 10_000
)

// =============================================================================
// Backend Boundary
// =============================================================================

// Backend is the slice of the transport client the orchestrator uses.
// Tests substitute a mock with call counters.
type Backend interface {
	Query(ctx context.Context, req *protocol.QueryRequest) (*protocol.QueryResponse, error)
	HealthCheck(ctx context.Context) *protocol.HealthResponse
}

// =============================================================================
// Lifecycle Phases
// =============================================================================

// Phase is the orchestrator's position in the query lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseDispatched
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseDispatched:
		return "dispatched"
	default:
		return "invalid"
	}
}

// =============================================================================
// Orchestrator
// =============================================================================

// Orchestrator assembles queries from editor context and owns the result
// of the most recent one.
//
// # Thread Safety
//
// Safe for concurrent use, but designed for a single submitting owner:
// concurrent submissions are not coordinated, the second one simply
// short-circuits with GuidanceBusy.
type Orchestrator struct {
	backend         Backend
	tracker         *connstate.Tracker
	editor          EditorSurface
	listener        Listener
	log             *slog.Logger
	includeExamples bool

	mu         sync.Mutex
	phase      Phase
	lastResult *Result
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithListener registers the result republish callback.
func WithListener(l Listener) Option {
	return func(o *Orchestrator) { o.listener = l }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithIncludeExamples controls whether queries ask the backend for
// example snippets. Defaults to true.
func WithIncludeExamples(include bool) Option {
	return func(o *Orchestrator) { o.includeExamples = include }
}

// New wires an orchestrator from its collaborators.
//
// All three collaborators are required and injected explicitly; the
// orchestrator creates nothing global.
func New(backend Backend, tracker *connstate.Tracker, editor EditorSurface, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:         backend,
		tracker:         tracker,
		editor:          editor,
		log:             slog.Default(),
		phase:           PhaseIdle,
		includeExamples: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// LastResult returns the result of the most recent submission, or nil.
// The stored result is superseded by the next query.
func (o *Orchestrator) LastResult() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastResult
}

// Clear drops the stored result.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastResult = nil
}

// =============================================================================
// Connection Checks
// =============================================================================

// TestConnection runs one health check through the state machine.
//
// # Description
//
// Drives the tracker through testing and into connected, disconnected,
// or error, then returns a snapshot for display. When a check is already
// in flight the snapshot of the running check is returned instead of
// starting a second one.
func (o *Orchestrator) TestConnection(ctx context.Context) connstate.Snapshot {
	if !o.tracker.BeginCheck() {
		return o.tracker.Snapshot()
	}

	health, err := o.checkHealth(ctx)
	if err != nil {
		o.tracker.Fail(err.Error())
	} else {
		o.tracker.Apply(health)
	}

	snap := o.tracker.Snapshot()
	o.log.Debug("connection check", "state", snap.State.String(), "version", snap.Version)
	return snap
}

// checkHealth calls the backend health probe, converting a panic in the
// probe path into the error state rather than crashing the host.
func (o *Orchestrator) checkHealth(ctx context.Context) (health *protocol.HealthResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			health = nil
			err = fmt.Errorf("health check panicked: %v", r)
		}
	}()
	return o.backend.HealthCheck(ctx), nil
}

// =============================================================================
// Query Submission
// =============================================================================

// Submit runs one query through the full lifecycle and returns its Result.
//
// # Description
//
// Applies the gating and sufficiency policies in order, then dispatches
// to the backend. Every path - short-circuit, success, failure - produces
// a Result, stores it as the last result, and republishes it through the
// listener. No transport error escapes as an error value.
//
// # Inputs
//
//   - ctx: Context for cancellation; the client adds its own timeout.
//   - queryText: The user's free-text question. May be empty; a default
//     question is derived from the query type.
//   - queryType: The analysis kind. Zero value defaults to explain.
//
// # Outputs
//
//   - *Result: The normalized outcome. Never nil.
func (o *Orchestrator) Submit(ctx context.Context, queryText string, queryType protocol.QueryType) *Result {
	start := time.Now()

	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return o.finish(&Result{
			Kind:      ResultGuidance,
			QueryType: queryType,
			Guidance:  guidanceBusy(),
			Elapsed:   time.Since(start),
		}, false)
	}
	o.phase = PhaseValidating
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.phase = PhaseIdle
		o.mu.Unlock()
	}()

	if !queryType.Valid() {
		queryType = protocol.QueryExplain
	}

	// Gate: refuse to submit unless the last health check said connected.
	// Failing fast here saves the user the timeout cost of a doomed call.
	if !o.tracker.CanSubmit() {
		o.log.Debug("query gated", "state", o.tracker.State().String())
		return o.finish(&Result{
			Kind:      ResultGuidance,
			QueryType: queryType,
			Guidance:  guidanceNotConnected(),
			Elapsed:   time.Since(start),
		}, true)
	}

	// Policy A: no open document.
	doc := o.editor.ActiveDocument()
	if doc == nil {
		return o.finish(&Result{
			Kind:      ResultGuidance,
			QueryType: queryType,
			Guidance:  guidanceNoEditor(),
			Elapsed:   time.Since(start),
		}, true)
	}

	// Policy B: selection too small, widen to the cursor's surroundings.
	code := doc.Selection
	if utf8.RuneCountInString(strings.TrimSpace(code)) < MinSelectionChars {
		code = contextWindow(doc.Text, doc.CursorLine)
	}

	// Policy C: still nothing worth analyzing.
	if utf8.RuneCountInString(strings.TrimSpace(code)) < MinAnalyzableChars {
		return o.finish(&Result{
			Kind:      ResultGuidance,
			QueryType: queryType,
			Guidance:  guidanceNoCodeSelected(),
			Elapsed:   time.Since(start),
		}, true)
	}

	req := o.buildRequest(doc, code, queryText, queryType)

	o.mu.Lock()
	o.phase = PhaseDispatched
	o.mu.Unlock()

	resp, err := o.backend.Query(ctx, req)
	if err != nil {
		return o.finish(o.failedResult(queryType, err, time.Since(start)), true)
	}

	o.log.Info("query answered",
		"query_id", resp.QueryID,
		"query_type", resp.QueryType,
		"elapsed", time.Since(start))
	return o.finish(&Result{
		Kind:      ResultAnswered,
		QueryType: resp.QueryType,
		Response:  resp,
		Elapsed:   time.Since(start),
	}, true)
}

// buildRequest assembles the wire request from the validated inputs.
//
// The file path is reduced to its basename - the backend needs the name
// for language heuristics and display, not the host's directory layout.
func (o *Orchestrator) buildRequest(doc *Document, code, queryText string, queryType protocol.QueryType) *protocol.QueryRequest {
	if strings.TrimSpace(queryText) == "" {
		queryText = defaultQueryText(queryType)
	}

	cc := protocol.CodeContext{
		FilePath:     filepath.Base(doc.FilePath),
		Language:     doc.Language,
		SelectedCode: code,
		CursorPosition: &protocol.CursorPosition{
			Line:   doc.CursorLine,
			Column: doc.CursorColumn,
		},
	}
	if utf8.RuneCountInString(doc.Text) <= MaxFullFileChars {
		cc.FullFileContent = doc.Text
	}

	req := protocol.NewQueryRequest(queryType, queryText, cc)
	req.IncludeExamples = o.includeExamples
	return req
}

// defaultQueryText supplies the question when the user typed none.
func defaultQueryText(t protocol.QueryType) string {
	switch t {
	case protocol.QueryOptimize:
		return "How can this code be optimized?"
	case protocol.QueryDebug:
		return "What could be going wrong in this code?"
	case protocol.QueryRefactor:
		return "How should this code be refactored?"
	case protocol.QueryGenerate:
		return "Generate code completing this snippet."
	case protocol.QueryReview:
		return "Review this code."
	default:
		return "Explain this code."
	}
}

// failedResult normalizes a transport failure into a display result.
func (o *Orchestrator) failedResult(queryType protocol.QueryType, err error, elapsed time.Duration) *Result {
	res := &Result{
		Kind:      ResultFailed,
		QueryType: queryType,
		Elapsed:   elapsed,
	}
	if ce, ok := client.AsClientError(err); ok {
		res.Message = ce.Message
		res.Detail = ce.FullError()
	} else {
		res.Message = "the query failed"
		res.Detail = err.Error()
	}
	o.log.Warn("query failed", "error", res.Message)
	return res
}

// finish stores and republishes a result. store is false only for the
// busy short-circuit, which must not clobber the in-flight query's slot.
func (o *Orchestrator) finish(res *Result, store bool) *Result {
	if store {
		o.mu.Lock()
		o.lastResult = res
		o.mu.Unlock()
	}
	if o.listener != nil {
		o.listener(res)
	}
	return res
}
