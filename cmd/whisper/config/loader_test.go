// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend.BaseURL != "http://localhost:8002" {
		t.Errorf("BaseURL = %q, want the local backend default", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutMs != 30000 {
		t.Errorf("TimeoutMs = %d, want 30000", cfg.Backend.TimeoutMs)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFrom_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper", "whisper.yaml")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.Backend.BaseURL != DefaultConfig().Backend.BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.Backend.BaseURL)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}

	// A second load reads the created file without error.
	if _, err := loadFrom(path); err != nil {
		t.Errorf("second loadFrom() error = %v", err)
	}
}

func TestLoadFrom_ReadsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper.yaml")
	content := []byte(`backend:
  base_url: http://backend.internal:9000
  timeout_ms: 5000
logging:
  level: debug
ingest:
  project_id: proj-42
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://backend.internal:9000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutMs != 5000 {
		t.Errorf("TimeoutMs = %d", cfg.Backend.TimeoutMs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Ingest.ProjectID != "proj-42" {
		t.Errorf("Ingest.ProjectID = %q", cfg.Ingest.ProjectID)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Backend.TimeoutMs != 30000 {
		t.Errorf("TimeoutMs = %d, want the default to survive a partial file", cfg.Backend.TimeoutMs)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper.yaml")

	t.Setenv(EnvBaseURL, "http://override:8080")
	t.Setenv(EnvTimeoutMs, "1500")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://override:8080" {
		t.Errorf("BaseURL = %q, env must win over the file", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutMs != 1500 {
		t.Errorf("TimeoutMs = %d, want 1500", cfg.Backend.TimeoutMs)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
}

func TestLoadFrom_InvalidEnvTimeoutIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper.yaml")

	t.Setenv(EnvTimeoutMs, "not-a-number")
	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.Backend.TimeoutMs != 30000 {
		t.Errorf("TimeoutMs = %d, garbage env value must be ignored", cfg.Backend.TimeoutMs)
	}

	t.Setenv(EnvTimeoutMs, "-5")
	cfg, err = loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.Backend.TimeoutMs != 30000 {
		t.Errorf("TimeoutMs = %d, non-positive env value must be ignored", cfg.Backend.TimeoutMs)
	}
}

func TestLoadFrom_BrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper.yaml")
	if err := os.WriteFile(path, []byte("backend: [broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadFrom(path); err == nil {
		t.Error("loadFrom() = nil error, want parse failure")
	}
}
