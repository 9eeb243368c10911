// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/codewhisperer-ai/whisper/pkg/connstate"
	"github.com/codewhisperer-ai/whisper/pkg/orchestrator"
	"github.com/codewhisperer-ai/whisper/pkg/protocol"
)

// =============================================================================
// Renderer
// =============================================================================

// Renderer writes query results and connection reports to a terminal.
//
// # Description
//
// Explanations come back from the backend as markdown; when the output is
// a TTY they are rendered through glamour, otherwise printed raw so pipes
// and redirects get clean text. Styling likewise degrades to plain output
// when not on a TTY.
//
// # Thread Safety
//
// Not thread-safe. One renderer per output stream, used from one
// goroutine - which is all the single-query-in-flight model needs.
type Renderer struct {
	out     io.Writer
	styled  bool
	verbose bool
	md      *glamour.TermRenderer
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithVerbose enables the technical detail sections normally hidden.
func WithVerbose(v bool) RendererOption {
	return func(r *Renderer) { r.verbose = v }
}

// WithStyling forces styling on or off, overriding TTY detection.
func WithStyling(styled bool) RendererOption {
	return func(r *Renderer) { r.styled = styled }
}

// NewRenderer creates a renderer writing to out.
//
// When out is os.Stdout on a TTY, styling and markdown rendering are
// enabled; otherwise output is plain text.
func NewRenderer(out io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{out: out}

	if f, ok := out.(*os.File); ok {
		r.styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.styled {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			r.md = md
		}
	}
	return r
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Renderer) println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// style applies s only when styling is enabled.
func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// markdown renders md as terminal markdown, falling back to the raw text.
func (r *Renderer) markdown(md string) string {
	if r.md == nil {
		return md
	}
	rendered, err := r.md.Render(md)
	if err != nil {
		return md
	}
	return rendered
}

// =============================================================================
// Query Results
// =============================================================================

// Result renders a query outcome of any kind.
func (r *Renderer) Result(res *orchestrator.Result) {
	switch res.Kind {
	case orchestrator.ResultAnswered:
		r.answer(res)
	case orchestrator.ResultGuidance:
		r.guidance(res.Guidance)
	case orchestrator.ResultFailed:
		r.failure(res.Message, res.Detail)
	}
}

func (r *Renderer) answer(res *orchestrator.Result) {
	resp := res.Response

	r.println(r.style(Styles.Title, fmt.Sprintf("%s %s", IconArrow, strings.ToUpper(resp.QueryType.String()))))
	r.println(r.markdown(resp.Explanation))

	if len(resp.Suggestions) > 0 {
		r.println(r.style(Styles.Subtitle, "Suggestions"))
		for _, s := range resp.Suggestions {
			r.printf("  %s %s %s\n",
				IconBullet,
				r.style(Styles.Bold, s.Title),
				r.style(Styles.Confidence, fmt.Sprintf("(%.0f%%)", s.Confidence*100)))
			r.printf("    %s\n", s.Description)
			if s.CodeSnippet != "" {
				r.println(r.markdown(fence(s.CodeSnippet)))
			}
		}
	}

	if len(resp.CodeExamples) > 0 {
		r.println(r.style(Styles.Subtitle, "Examples"))
		for _, ex := range resp.CodeExamples {
			r.println(r.markdown(fence(ex)))
		}
	}

	r.println(r.style(Styles.Muted, fmt.Sprintf(
		"confidence %.0f%% · processed in %dms · %s",
		resp.Confidence*100, resp.ProcessingTimeMs, resp.QueryID)))
}

func (r *Renderer) guidance(g *orchestrator.Guidance) {
	r.printf("%s %s\n", IconWarning.Render(), r.style(Styles.Warning, g.Message))
	for _, s := range g.Suggestions {
		r.printf("  %s %s: %s\n", IconBullet, r.style(Styles.Bold, s.Title), s.Description)
	}
}

func (r *Renderer) failure(message, detail string) {
	r.printf("%s %s\n", IconError.Render(), r.style(Styles.Error, message))
	if r.verbose && detail != "" {
		r.println(r.style(Styles.Muted, detail))
	} else if detail != "" {
		r.println(r.style(Styles.Muted, "run with --verbose for details"))
	}
}

// fence wraps code in a markdown code fence for glamour.
func fence(code string) string {
	return "```\n" + strings.TrimRight(code, "\n") + "\n```"
}

// =============================================================================
// Connection Reports
// =============================================================================

// Connection renders a connection state snapshot.
func (r *Renderer) Connection(snap connstate.Snapshot) {
	switch snap.State {
	case connstate.StateConnected:
		r.printf("%s connected", IconSuccess.Render())
		if snap.Service != "" {
			r.printf(" to %s", r.style(Styles.Bold, snap.Service))
		}
		if snap.Version != "" {
			r.printf(" %s", r.style(Styles.Muted, "v"+snap.Version))
		}
		r.println()
		if len(snap.Dependencies) > 0 {
			names := make([]string, 0, len(snap.Dependencies))
			for name := range snap.Dependencies {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				r.printf("  %s %s: %s\n", IconBullet, name, snap.Dependencies[name])
			}
		}
	case connstate.StateDisconnected:
		r.printf("%s disconnected: the backend did not answer the health check\n", IconError.Render())
	case connstate.StateError:
		r.printf("%s connection check failed\n", IconError.Render())
		if snap.ErrorDetail != "" {
			r.println(r.style(Styles.Muted, snap.ErrorDetail))
		}
	case connstate.StateTesting:
		r.printf("%s checking...\n", IconPending.Render())
	default:
		r.printf("%s not checked yet\n", IconPending.Render())
	}
}

// Status renders the backend diagnostics payload.
func (r *Renderer) Status(status *protocol.StatusResponse) {
	r.println(r.style(Styles.Subtitle, "Backend status"))
	r.printf("  service: %s\n", status.ServiceStatus)
	if status.APIVersion != "" {
		r.printf("  api version: %s\n", status.APIVersion)
	}
	r.printf("  total queries: %d\n", status.TotalQueries)
	r.printf("  total ingestions: %d\n", status.TotalIngestions)
	r.printf("  knowledge base size: %d\n", status.KnowledgeBaseSize)
	if status.LastUpdated != "" {
		r.printf("  last updated: %s\n", status.LastUpdated)
	}
}

// Ingest renders an ingest acknowledgement.
func (r *Renderer) Ingest(path string, resp *protocol.IngestResponse) {
	icon := IconSuccess
	if !strings.EqualFold(resp.Status, "success") {
		icon = IconWarning
	}
	r.printf("%s %s: %s (%d chunks, %d embeddings, %dms)\n",
		icon.Render(), path, resp.Status,
		resp.ChunksCreated, resp.EmbeddingsGenerated, resp.ProcessingTimeMs)
	if resp.Message != "" {
		r.println(r.style(Styles.Muted, "  "+resp.Message))
	}
}

// Errorf renders a one-line error message.
func (r *Renderer) Errorf(format string, args ...any) {
	r.printf("%s %s\n", IconError.Render(), r.style(Styles.Error, fmt.Sprintf(format, args...)))
}
