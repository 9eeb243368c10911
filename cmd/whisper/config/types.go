// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

// Config is the whisper CLI configuration, stored at ~/.whisper/whisper.yaml.
type Config struct {
	// Backend: where the Code Whisperer backend listens
	Backend BackendConfig `yaml:"backend"`

	// Logging: level and optional log directory
	Logging LoggingConfig `yaml:"logging"`

	// Ingest: defaults for knowledge-base ingestion
	Ingest IngestConfig `yaml:"ingest"`
}

type BackendConfig struct {
	BaseURL   string `yaml:"base_url"`   // e.g. http://localhost:8002
	TimeoutMs int    `yaml:"timeout_ms"` // per-call timeout, default 30000
}

type LoggingConfig struct {
	Level string `yaml:"level"`         // debug, info, warn, error
	Dir   string `yaml:"dir,omitempty"` // enables file logging when set
	JSON  bool   `yaml:"json"`
}

type IngestConfig struct {
	ProjectID string `yaml:"project_id,omitempty"`
}

// DefaultConfig returns the config written on first run.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:   "http://localhost:8002",
			TimeoutMs: 30000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
