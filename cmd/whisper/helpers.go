// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codewhisperer-ai/whisper/pkg/orchestrator"
)

// languageForFile maps a file extension to the editor language identifier
// the backend expects. Unknown extensions fall back to "plaintext".
func languageForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".jsx":
		return "javascriptreact"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".c", ".h":
		return "c"
	case ".cc", ".cpp", ".hpp", ".cxx":
		return "cpp"
	case ".cs":
		return "csharp"
	case ".rb":
		return "ruby"
	case ".php":
		return "php"
	case ".swift":
		return "swift"
	case ".kt", ".kts":
		return "kotlin"
	case ".sh", ".bash":
		return "shellscript"
	case ".sql":
		return "sql"
	case ".html", ".htm":
		return "html"
	case ".css":
		return "css"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".md":
		return "markdown"
	default:
		return "plaintext"
	}
}

// parseLineRange parses a 1-based inclusive "start:end" selection.
func parseLineRange(s string) (start, end int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid line range %q, expected start:end", s)
	}
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start line %q", parts[0])
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end line %q", parts[1])
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("invalid line range %d:%d", start, end)
	}
	return start, end, nil
}

// selectLines extracts the 1-based inclusive [start, end] lines of text.
// Out-of-range bounds are clamped to the document.
func selectLines(text string, start, end int) string {
	lines := strings.Split(text, "\n")
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// buildEditorSurface presents the CLI's inputs as "the open editor".
//
// A file argument becomes the active document, with --lines as the
// selection and the cursor on the selection's first line. --stdin makes
// the piped input the document. With neither, no document is open and
// the orchestrator's no-editor policy answers.
func buildEditorSurface(args []string) (orchestrator.EditorSurface, error) {
	if readStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		text := string(data)
		return &orchestrator.StaticEditor{Doc: &orchestrator.Document{
			FilePath:  "stdin",
			Language:  "plaintext",
			Text:      text,
			Selection: text,
		}}, nil
	}

	if len(args) == 0 {
		return &orchestrator.StaticEditor{}, nil
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(data)

	doc := &orchestrator.Document{
		FilePath: path,
		Language: languageForFile(path),
		Text:     text,
	}

	if lineRange != "" {
		start, end, err := parseLineRange(lineRange)
		if err != nil {
			return nil, err
		}
		doc.Selection = selectLines(text, start, end)
		doc.CursorLine = start - 1
	} else {
		// Whole file as the selection: asking about a file means all of it.
		doc.Selection = text
	}

	return &orchestrator.StaticEditor{Doc: doc}, nil
}
