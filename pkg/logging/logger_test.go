// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLevel covers the config string mapping and its fallback.
func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""), "empty falls back to info")
	assert.Equal(t, LevelInfo, ParseLevel("verbose"), "unknown falls back to info")
}

// TestLevel_String pins the display names.
func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

// TestNew_FileLogging verifies the dated JSON log file is written.
func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelDebug,
		LogDir:  dir,
		Service: "testsvc",
		Quiet:   true,
	})

	logger.Info("query submitted", "query_type", "explain")
	logger.Debug("detail line", "n", 3)
	require.NoError(t, logger.Close())

	name := "testsvc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "query submitted", entry["msg"])
	assert.Equal(t, "explain", entry["query_type"])
	assert.Equal(t, "testsvc", entry["service"])
}

// TestNew_LevelFiltering verifies messages below the configured level are
// dropped.
func TestNew_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "filter",
		Quiet:   true,
	})

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	require.NoError(t, logger.Close())

	name := "filter_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), "kept")
}

// TestNew_BadLogDirDoesNotFail verifies an unwritable log dir degrades to
// stderr-only logging instead of breaking startup.
func TestNew_BadLogDirDoesNotFail(t *testing.T) {
	logger := New(Config{
		Level:  LevelInfo,
		LogDir: string([]byte{0}),
		Quiet:  true,
	})
	logger.Info("still works")
	assert.NoError(t, logger.Close())
}

// TestWith_ChildDoesNotOwnFile verifies closing a child leaves the root's
// file open.
func TestWith_ChildDoesNotOwnFile(t *testing.T) {
	dir := t.TempDir()
	root := New(Config{Level: LevelInfo, LogDir: dir, Service: "root", Quiet: true})
	defer root.Close()

	child := root.With("component", "client")
	require.NoError(t, child.Close(), "child close is a no-op")

	// The root can still write after the child closed.
	root.Info("after child close")
	require.NoError(t, root.Close())

	name := "root_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "after child close")
}

// TestClose_Idempotent verifies repeated Close calls are safe.
func TestClose_Idempotent(t *testing.T) {
	logger := New(Config{Level: LevelInfo, LogDir: t.TempDir(), Quiet: true})
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())
}

// TestExpandPath covers ~ expansion.
func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".whisper/logs"), expandPath("~/.whisper/logs"))
	assert.Equal(t, home, expandPath("~"))
	assert.Equal(t, "/var/log/whisper", expandPath("/var/log/whisper"))
	assert.Equal(t, "relative/path", expandPath("relative/path"))
}
