// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package client implements the HTTP transport client for the Code Whisperer
backend.

# Problem Statement

The host (editor extension or CLI) talks to the backend over a small JSON
protocol: query, ingest, health, status, and a bare reachability probe.
Every call must be bounded by a timeout, and callers need to distinguish
"the server rejected this" from "the server is unreachable" from "we gave
up waiting" - each is presented differently to the user.

# Solution

Client wraps net/http with:

 1. A per-call timeout (default 30s) applied via context.WithTimeout,
    so an expired call is actually cancelled, not abandoned.
 2. A single structured error type (ClientError) whose Type field
    separates timeout, network, and application failures.
 3. Non-2xx bodies decoded as the backend's {error, message, details,
    request_id} payload; the server's own message wins when present.
 4. A HealthCheck that never fails outward: health polling drives UI
    state and must degrade to "unreachable", not crash the caller.

# Usage

	c := client.New("http://localhost:8002")

	resp, err := c.Query(ctx, req)
	if err != nil {
	    if ce, ok := client.AsClientError(err); ok && ce.Type == client.ErrorTimeout {
	        fmt.Println("backend took too long, try again")
	    }
	    return
	}
	fmt.Println(resp.Explanation)

# Configuration

Base URL and timeout are the only state the client holds; both can be
changed after construction with SetBaseURL and SetTimeout. Construct one
client per composition root and inject it - there is no package-level
singleton.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/codewhisperer-ai/whisper/pkg/protocol"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultBaseURL is where a locally run backend listens.
	DefaultBaseURL = "http://localhost:8002"

	// DefaultTimeout bounds every backend call unless overridden.
	DefaultTimeout = 30 * time.Second

	queryPath  = "/api/v1/query"
	ingestPath = "/api/v1/ingest"
	healthPath = "/health"
	statusPath = "/status"

	// maxErrorBodyBytes caps how much of an error body is read into the
	// Detail field.
	maxErrorBodyBytes = 16 * 1024
)

// =============================================================================
// Interfaces
// =============================================================================

// HTTPDoer abstracts the underlying HTTP transport for testing.
//
// Production uses *http.Client; tests substitute a mock that records the
// request and returns a canned response.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// =============================================================================
// Client
// =============================================================================

// Client is the transport client for the Code Whisperer backend.
//
// # Thread Safety
//
// Safe for concurrent use. Base URL and timeout are protected by a mutex
// so setters can be called while requests are in flight; an in-flight
// request keeps the values it started with.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	timeout time.Duration

	httpClient HTTPDoer
	log        *slog.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.httpClient = doer }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request/response logging.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a transport client for the given backend base URL.
//
// # Description
//
// An empty baseURL falls back to DefaultBaseURL. A trailing slash is
// stripped so endpoint paths can be joined naively. The zero-timeout
// net/http client is used underneath; deadlines come from per-call
// contexts, not from http.Client.Timeout, so SetTimeout takes effect for
// calls already being built.
//
// # Inputs
//
//   - baseURL: Backend URL (e.g. "http://localhost:8002")
//   - opts: Optional overrides for transport, timeout, and logging
//
// # Outputs
//
//   - *Client: Configured client instance
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points the client at a different backend.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// Timeout returns the configured per-call timeout.
func (c *Client) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// SetTimeout changes the per-call timeout. Non-positive values restore
// the default.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d <= 0 {
		d = DefaultTimeout
	}
	c.timeout = d
}

// =============================================================================
// Operations
// =============================================================================

// Query submits a code analysis request.
//
// # Description
//
// Validates the request locally, POSTs it to /api/v1/query, and returns
// the normalized response. The request must be fully populated; no
// defaulting happens here (the orchestrator owns defaulting policy).
//
// # Inputs
//
//   - ctx: Context for cancellation. The configured timeout is applied
//     on top of any deadline the caller set.
//   - req: A complete, valid QueryRequest.
//
// # Outputs
//
//   - *protocol.QueryResponse: Normalized response on success
//   - error: *ClientError on transport or application failure, or a
//     validation error if req is malformed
func (c *Client) Query(ctx context.Context, req *protocol.QueryRequest) (*protocol.QueryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp protocol.QueryResponse
	if err := c.postJSON(ctx, queryPath, req, &resp); err != nil {
		return nil, err
	}
	resp.Normalize()

	c.log.Debug("query completed",
		"query_id", resp.QueryID,
		"query_type", resp.QueryType,
		"suggestions", len(resp.Suggestions),
		"processing_ms", resp.ProcessingTimeMs)
	return &resp, nil
}

// Ingest submits a file to the backend knowledge base.
func (c *Client) Ingest(ctx context.Context, req *protocol.IngestRequest) (*protocol.IngestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp protocol.IngestResponse
	if err := c.postJSON(ctx, ingestPath, req, &resp); err != nil {
		return nil, err
	}

	c.log.Debug("ingest completed",
		"ingest_id", resp.IngestID,
		"status", resp.Status,
		"chunks", resp.ChunksCreated)
	return &resp, nil
}

// HealthCheck probes GET /health.
//
// # Description
//
// HealthCheck never returns an error: health polling drives the
// connection state machine and UI, and a failed probe is ordinary input
// to that machine, not an exceptional condition. Any failure - timeout,
// refused connection, non-2xx, garbage body - degrades to a nil result,
// which callers treat as "unreachable".
//
// # Outputs
//
//   - *protocol.HealthResponse: The health payload, or nil on any failure
func (c *Client) HealthCheck(ctx context.Context) *protocol.HealthResponse {
	var resp protocol.HealthResponse
	if err := c.getJSON(ctx, healthPath, &resp); err != nil {
		c.log.Debug("health check failed", "error", err)
		return nil
	}
	return &resp
}

// Status fetches GET /status for connection diagnostics.
func (c *Client) Status(ctx context.Context) (*protocol.StatusResponse, error) {
	var resp protocol.StatusResponse
	if err := c.getJSON(ctx, statusPath, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping probes GET / as a lightweight reachability check.
//
// Any 2xx counts as reachable; the body is discarded.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/", nil)
	if err != nil {
		return c.networkError(err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ClientError{
			Type:        ErrorAPI,
			Message:     fmt.Sprintf("backend returned HTTP %d", resp.StatusCode),
			StatusCode:  resp.StatusCode,
			Remediation: "Check the backend logs for errors",
		}
	}
	return nil
}

// =============================================================================
// Request Plumbing
// =============================================================================

// callContext derives the per-call context carrying the configured timeout.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.Timeout())
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ClientError{
			Type:    ErrorInvalidResponse,
			Message: "failed to encode request",
			Detail:  err.Error(),
		}
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return c.networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(ctx, req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+path, nil)
	if err != nil {
		return c.networkError(err)
	}
	return c.do(ctx, req, out)
}

// do executes the request and decodes the response into out.
func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{
			Type:        ErrorInvalidResponse,
			Message:     "failed to parse backend response",
			Detail:      err.Error(),
			Remediation: "The backend may be a different version than this client expects",
		}
	}

	c.log.Debug("backend call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return nil
}

// transportError classifies a failure where no response was received.
//
// context.DeadlineExceeded on our per-call context means the configured
// timeout fired; everything else is a network-level failure.
func (c *Client) transportError(ctx context.Context, err error) *ClientError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		timeout := c.Timeout()
		return &ClientError{
			Type:        ErrorTimeout,
			Message:     fmt.Sprintf("request timed out after %s", timeout),
			Detail:      err.Error(),
			Remediation: "Try again, or raise the timeout if the backend is slow",
		}
	}
	return c.networkError(err)
}

func (c *Client) networkError(err error) *ClientError {
	return &ClientError{
		Type:        ErrorNetworkUnavailable,
		Message:     "cannot reach the backend",
		Detail:      err.Error(),
		Remediation: fmt.Sprintf("Check that the backend is running at %s", c.BaseURL()),
	}
}

// apiError decodes a non-2xx response into an application error.
//
// The backend's own message is preferred; an undecodable body falls back
// to an HTTP-status-derived message with the raw body kept as detail.
func (c *Client) apiError(resp *http.Response) *ClientError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var errBody protocol.ErrorResponse
	detail := ""
	requestID := ""
	if err := json.Unmarshal(raw, &errBody); err == nil {
		requestID = errBody.RequestID
		if len(errBody.Details) > 0 {
			detail = string(errBody.Details)
		}
	} else {
		detail = strings.TrimSpace(string(raw))
	}

	return &ClientError{
		Type:        ErrorAPI,
		Message:     errBody.DisplayMessage(resp.StatusCode),
		Detail:      detail,
		StatusCode:  resp.StatusCode,
		RequestID:   requestID,
		Remediation: "Check the backend logs for errors",
	}
}
