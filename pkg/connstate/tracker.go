// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package connstate tracks backend reachability and gates query submission.

# Problem Statement

Submitting a query to an unreachable backend costs the user a full timeout
before they learn anything. The host instead keeps a small state machine
fed by health-check results and refuses to submit unless the last check
said "connected" - failing fast with guidance instead of burning 30
seconds on a doomed request.

# State Machine

	unknown ──► testing ──► connected
	              │    ╲──► disconnected
	              │    ╲──► error
	              ▲
	any state ────┘  (explicit re-check)

The initial state is unknown. BeginCheck moves to testing; the check's
outcome moves to connected (healthy payload), disconnected (absent
payload), or error (the check itself blew up). Any state can re-enter
testing on an explicit re-check.

# Overlapping Checks

Health checks can be triggered by panel creation and by explicit user
action at the same time. BeginCheck returns false while a check is
already in flight, so overlapping checks are coalesced rather than
racing to write the result.
*/
package connstate

import (
	"sync"
	"time"

	"github.com/codewhisperer-ai/whisper/pkg/protocol"
)

// =============================================================================
// States
// =============================================================================

// State is the backend reachability state.
type State int

const (
	// StateUnknown is the initial state before any health check ran.
	StateUnknown State = iota

	// StateTesting means a health check is in flight.
	StateTesting

	// StateConnected means the last health check returned a healthy payload.
	StateConnected

	// StateDisconnected means the last health check got no usable response.
	StateDisconnected

	// StateError means the last health check itself failed with an error.
	StateError
)

// String returns the lower-case state name used in logs and UI.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateTesting:
		return "testing"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateError:
		return "error"
	default:
		return "invalid"
	}
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is a point-in-time copy of the tracker for display.
type Snapshot struct {
	State        State
	Version      string
	Service      string
	Dependencies map[string]string
	ErrorDetail  string
	CheckedAt    time.Time
}

// =============================================================================
// Tracker
// =============================================================================

// Tracker holds the connection state machine.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Mutation is still expected to
// come from a single owner (the orchestrator / UI-state holder); the
// mutex exists so readers and the in-flight guard stay race-free, not to
// coordinate concurrent writers.
type Tracker struct {
	mu           sync.RWMutex
	state        State
	version      string
	service      string
	dependencies map[string]string
	errorDetail  string
	checkedAt    time.Time
}

// NewTracker returns a tracker in StateUnknown.
func NewTracker() *Tracker {
	return &Tracker{state: StateUnknown}
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// CanSubmit reports whether a query may be sent to the backend.
// True only in StateConnected.
func (t *Tracker) CanSubmit() bool {
	return t.State() == StateConnected
}

// BeginCheck transitions to StateTesting.
//
// # Description
//
// Returns false without changing state when a check is already in
// flight, deduplicating overlapping health checks. Every other state
// (including connected) may re-enter testing - a re-check is always
// allowed.
//
// # Outputs
//
//   - bool: true if the caller owns the check and must complete it with
//     Apply or Fail
func (t *Tracker) BeginCheck() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateTesting {
		return false
	}
	t.state = StateTesting
	return true
}

// Apply records the result of a health check.
//
// # Description
//
// A healthy payload moves to StateConnected and stores the reported
// version, service name, and dependency map. A nil or unhealthy payload
// moves to StateDisconnected. Either way the previous error detail is
// cleared and the check timestamp is updated.
//
// # Inputs
//
//   - health: The health-check result; nil means no response was received
func (t *Tracker) Apply(health *protocol.HealthResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.checkedAt = time.Now()
	t.errorDetail = ""

	if !health.Healthy() {
		t.state = StateDisconnected
		t.version = ""
		t.service = ""
		t.dependencies = nil
		return
	}

	t.state = StateConnected
	t.version = health.Version
	t.service = health.Service
	t.dependencies = health.Dependencies
}

// Fail records that the health check itself failed.
func (t *Tracker) Fail(detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateError
	t.errorDetail = detail
	t.checkedAt = time.Now()
}

// Snapshot returns a copy of the current state for display.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	deps := make(map[string]string, len(t.dependencies))
	for k, v := range t.dependencies {
		deps[k] = v
	}
	return Snapshot{
		State:        t.state,
		Version:      t.version,
		Service:      t.service,
		Dependencies: deps,
		ErrorDetail:  t.errorDetail,
		CheckedAt:    t.checkedAt,
	}
}
