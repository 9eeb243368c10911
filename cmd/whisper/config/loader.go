// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the whisper CLI configuration.
//
// Precedence, lowest to highest: built-in defaults, ~/.whisper/whisper.yaml
// (created on first run), then environment variables. A .env file in the
// working directory is loaded first so the environment overrides work the
// same way the original backend's dotenv setup did.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable overrides.
const (
	EnvBaseURL   = "WHISPER_BACKEND_URL"
	EnvTimeoutMs = "WHISPER_TIMEOUT_MS"
	EnvLogLevel  = "WHISPER_LOG_LEVEL"
)

// Load reads the configuration and returns it.
//
// The config file is created with defaults on first run. Load never
// mutates package state; callers own the returned value.
func Load() (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return loadFrom(filepath.Join(home, ".whisper", "whisper.yaml"))
}

func loadFrom(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefault(path); err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv layers environment overrides onto the file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv(EnvTimeoutMs); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Backend.TimeoutMs = ms
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
