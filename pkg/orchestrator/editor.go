// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package orchestrator

import "strings"

// =============================================================================
// Editor Boundary
// =============================================================================

// Document is the host editor's view of the active file.
//
// The editor surface is a pure data source: current text, current
// selection, current language tag. There is no further contract - the
// orchestrator applies all sufficiency policy on its side of the boundary.
type Document struct {
	// FilePath is the absolute or workspace-relative path of the file.
	FilePath string

	// Language is the editor's language identifier (e.g. "python", "go").
	Language string

	// Text is the full document content.
	Text string

	// Selection is the currently selected text, empty when nothing is
	// selected.
	Selection string

	// CursorLine and CursorColumn are the zero-based cursor position,
	// used for the fallback context window when the selection is too
	// small to analyze.
	CursorLine   int
	CursorColumn int
}

// EditorSurface supplies the active document to the orchestrator.
//
// Implementations: the CLI builds one from a file plus a line range;
// tests return fixed documents. A nil document means no editor is open.
type EditorSurface interface {
	ActiveDocument() *Document
}

// StaticEditor is an EditorSurface returning a fixed document.
//
// The CLI uses it to present a file-plus-selection as "the open editor";
// tests use it to script each policy branch.
type StaticEditor struct {
	Doc *Document
}

// ActiveDocument implements EditorSurface.
func (e *StaticEditor) ActiveDocument() *Document {
	return e.Doc
}

// =============================================================================
// Fallback Window
// =============================================================================

// contextWindow extracts the lines around the cursor as fallback context.
//
// Returns FallbackContextLines lines either side of the cursor line,
// joined with newlines. An out-of-range cursor line is clamped into the
// document rather than treated as an error.
func contextWindow(text string, cursorLine int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")

	if cursorLine < 0 {
		cursorLine = 0
	}
	if cursorLine >= len(lines) {
		cursorLine = len(lines) - 1
	}

	start := cursorLine - FallbackContextLines
	if start < 0 {
		start = 0
	}
	end := cursorLine + FallbackContextLines + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
