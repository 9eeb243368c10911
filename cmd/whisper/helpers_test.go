// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLanguageForFile(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"app.py", "python"},
		{"src/Main.PY", "python"},
		{"server.go", "go"},
		{"index.js", "javascript"},
		{"component.tsx", "typescript"},
		{"lib.rs", "rust"},
		{"query.sql", "sql"},
		{"deploy.yaml", "yaml"},
		{"notes.txt", "plaintext"},
		{"Makefile", "plaintext"},
		{"", "plaintext"},
	}
	for _, tc := range cases {
		if got := languageForFile(tc.path); got != tc.want {
			t.Errorf("languageForFile(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestParseLineRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		start, end, err := parseLineRange("3:10")
		if err != nil {
			t.Fatalf("parseLineRange() error = %v", err)
		}
		if start != 3 || end != 10 {
			t.Errorf("got %d:%d, want 3:10", start, end)
		}
	})

	t.Run("single line", func(t *testing.T) {
		start, end, err := parseLineRange("5:5")
		if err != nil {
			t.Fatalf("parseLineRange() error = %v", err)
		}
		if start != 5 || end != 5 {
			t.Errorf("got %d:%d, want 5:5", start, end)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		for _, s := range []string{"", "3", "3-10", "a:10", "3:b", "0:5", "10:3", "-1:5"} {
			if _, _, err := parseLineRange(s); err == nil {
				t.Errorf("parseLineRange(%q) = nil error, want failure", s)
			}
		}
	})
}

func TestSelectLines(t *testing.T) {
	text := "one\ntwo\nthree\nfour"

	cases := []struct {
		name       string
		start, end int
		want       string
	}{
		{"middle", 2, 3, "two\nthree"},
		{"whole document", 1, 4, text},
		{"end clamped", 3, 99, "three\nfour"},
		{"start clamped", 0, 2, "one\ntwo"},
		{"start past end of document", 10, 12, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := selectLines(text, tc.start, tc.end); got != tc.want {
				t.Errorf("selectLines(%d, %d) = %q, want %q", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestBuildEditorSurface_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	content := "import os\n\ndef main():\n    print('hello')\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("whole file", func(t *testing.T) {
		lineRange = ""
		editor, err := buildEditorSurface([]string{path})
		if err != nil {
			t.Fatalf("buildEditorSurface() error = %v", err)
		}
		doc := editor.ActiveDocument()
		if doc == nil {
			t.Fatal("ActiveDocument() = nil, want a document")
		}
		if doc.Language != "python" {
			t.Errorf("Language = %q, want python", doc.Language)
		}
		if doc.Selection != content {
			t.Errorf("Selection = %q, want the whole file", doc.Selection)
		}
	})

	t.Run("line range selection", func(t *testing.T) {
		lineRange = "3:4"
		defer func() { lineRange = "" }()

		editor, err := buildEditorSurface([]string{path})
		if err != nil {
			t.Fatalf("buildEditorSurface() error = %v", err)
		}
		doc := editor.ActiveDocument()
		if doc.Selection != "def main():\n    print('hello')" {
			t.Errorf("Selection = %q", doc.Selection)
		}
		if doc.CursorLine != 2 {
			t.Errorf("CursorLine = %d, want 2 (zero-based start of the range)", doc.CursorLine)
		}
	})

	t.Run("bad line range", func(t *testing.T) {
		lineRange = "9:1"
		defer func() { lineRange = "" }()

		if _, err := buildEditorSurface([]string{path}); err == nil {
			t.Error("buildEditorSurface() = nil error, want range failure")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := buildEditorSurface([]string{filepath.Join(dir, "nope.py")}); err == nil {
			t.Error("buildEditorSurface() = nil error, want read failure")
		}
	})
}

func TestBuildEditorSurface_NoArgs(t *testing.T) {
	editor, err := buildEditorSurface(nil)
	if err != nil {
		t.Fatalf("buildEditorSurface() error = %v", err)
	}
	if editor.ActiveDocument() != nil {
		t.Error("ActiveDocument() != nil, want no open document")
	}
}
