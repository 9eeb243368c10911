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
	"sort"
	"testing"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(rel string) string {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	appPy := write("app.py")
	utilGo := write("pkg/util.go")
	write("notes.txt")          // unknown extension, skipped
	write(".env")               // hidden, skipped
	write(".git/objects/ab12")  // hidden dir, skipped
	write("pkg/.hidden/sub.py") // file inside hidden dir, skipped

	t.Run("directory walk", func(t *testing.T) {
		files, err := collectFiles([]string{dir})
		if err != nil {
			t.Fatalf("collectFiles() error = %v", err)
		}
		sort.Strings(files)
		want := []string{appPy, utilGo}
		sort.Strings(want)
		if len(files) != len(want) {
			t.Fatalf("collectFiles() = %v, want %v", files, want)
		}
		for i := range want {
			if files[i] != want[i] {
				t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
			}
		}
	})

	t.Run("explicit file bypasses the extension filter", func(t *testing.T) {
		txt := filepath.Join(dir, "notes.txt")
		files, err := collectFiles([]string{txt})
		if err != nil {
			t.Fatalf("collectFiles() error = %v", err)
		}
		if len(files) != 1 || files[0] != txt {
			t.Errorf("collectFiles() = %v, want the named file", files)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := collectFiles([]string{filepath.Join(dir, "gone")}); err == nil {
			t.Error("collectFiles() = nil error, want stat failure")
		}
	})
}
