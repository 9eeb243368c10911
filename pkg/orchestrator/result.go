// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package orchestrator

import (
	"time"

	"github.com/codewhisperer-ai/whisper/pkg/protocol"
)

// =============================================================================
// Result Types
// =============================================================================

// ResultKind classifies the outcome of one query submission.
type ResultKind int

const (
	// ResultAnswered means the backend produced a QueryResponse.
	ResultAnswered ResultKind = iota

	// ResultGuidance means local policy short-circuited the query before
	// any network call; the result tells the user what to do instead.
	ResultGuidance

	// ResultFailed means the backend call was attempted and failed.
	ResultFailed
)

// String returns the kind name for logging.
func (k ResultKind) String() string {
	switch k {
	case ResultAnswered:
		return "answered"
	case ResultGuidance:
		return "guidance"
	case ResultFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// GuidanceReason identifies which policy short-circuited the query.
//
// Guidance is a structured outcome, not prose: tests and UIs branch on
// the reason, never on message text.
type GuidanceReason int

const (
	// GuidanceNotConnected: the connection state machine is not in
	// connected, so no request was attempted.
	GuidanceNotConnected GuidanceReason = iota

	// GuidanceNoEditor: no document is open in the host editor.
	GuidanceNoEditor

	// GuidanceNoCodeSelected: the selection and the fallback window
	// both yielded too little code to analyze.
	GuidanceNoCodeSelected

	// GuidanceBusy: a query is already in flight on this panel.
	GuidanceBusy
)

// String returns the reason name for logging.
func (r GuidanceReason) String() string {
	switch r {
	case GuidanceNotConnected:
		return "not_connected"
	case GuidanceNoEditor:
		return "no_editor"
	case GuidanceNoCodeSelected:
		return "no_code_selected"
	case GuidanceBusy:
		return "busy"
	default:
		return "invalid"
	}
}

// Guidance is the payload of a short-circuited query.
type Guidance struct {
	Reason      GuidanceReason
	Message     string
	Suggestions []protocol.CodeSuggestion
}

// Result is the normalized outcome of one query submission.
//
// Exactly one of Response and Guidance is set for answered/guidance
// results; failed results carry Message and Detail instead. Detail holds
// the technical trace and is kept separate from Message so a UI can hide
// it behind a disclosure control.
type Result struct {
	Kind      ResultKind
	QueryType protocol.QueryType
	Elapsed   time.Duration

	// Answered
	Response *protocol.QueryResponse

	// Guidance
	Guidance *Guidance

	// Failed
	Message string
	Detail  string
}

// Listener receives each completed Result. The orchestrator republishes
// every outcome - answered, guidance, or failed - through the listener so
// the presentation layer has a single subscription point.
type Listener func(*Result)

// =============================================================================
// Canned Guidance
// =============================================================================

func guidanceNotConnected() *Guidance {
	return &Guidance{
		Reason:  GuidanceNotConnected,
		Message: "The backend is not connected, so the query was not sent.",
		Suggestions: []protocol.CodeSuggestion{
			{
				Title:       "Test the connection",
				Description: "Run a health check (whisper status) to see whether the backend is reachable.",
				Confidence:  1.0,
			},
			{
				Title:       "Start the backend",
				Description: "If the backend is not running, start it and check again.",
				Confidence:  1.0,
			},
		},
	}
}

func guidanceNoEditor() *Guidance {
	return &Guidance{
		Reason:  GuidanceNoEditor,
		Message: "No code file is open, so there is nothing to analyze.",
		Suggestions: []protocol.CodeSuggestion{
			{
				Title:       "Open a code file",
				Description: "Open the file you want to ask about, then submit the query again.",
				Confidence:  1.0,
			},
			{
				Title:       "Pass a file to the CLI",
				Description: "From the command line, run: whisper ask path/to/file.py -q \"your question\"",
				Confidence:  0.9,
			},
		},
	}
}

func guidanceNoCodeSelected() *Guidance {
	return &Guidance{
		Reason:  GuidanceNoCodeSelected,
		Message: "Not enough code was selected to analyze, even after widening to the surrounding lines.",
		Suggestions: []protocol.CodeSuggestion{
			{
				Title:       "Select the code to analyze",
				Description: "Highlight at least a full statement or function, then submit the query again.",
				Confidence:  1.0,
			},
			{
				Title:       "Move the cursor into code",
				Description: "With no selection, the lines around the cursor are used - place the cursor inside the code you mean.",
				Confidence:  0.9,
			},
		},
	}
}

func guidanceBusy() *Guidance {
	return &Guidance{
		Reason:  GuidanceBusy,
		Message: "A query is already running; wait for it to finish before submitting another.",
		Suggestions: []protocol.CodeSuggestion{
			{
				Title:       "Wait for the current query",
				Description: "Only one query runs at a time per panel. The running query will finish or time out.",
				Confidence:  1.0,
			},
		},
	}
}
