// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/codewhisperer-ai/whisper/pkg/client"
	"github.com/codewhisperer-ai/whisper/pkg/protocol"
	"github.com/codewhisperer-ai/whisper/pkg/ux"
)

func runIngestCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newClient()
	renderer := ux.NewRenderer(os.Stdout, ux.WithVerbose(verbose))

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no ingestable files found under %v", args)
	}

	failures := 0
	for _, path := range files {
		if err := ingestFile(ctx, c, renderer, path); err != nil {
			failures++
		}
	}
	log.Info("ingest pass complete", "files", len(files), "failures", failures)

	if watchMode {
		return watchAndIngest(ctx, c, renderer, args)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failures, len(files))
	}
	return nil
}

// collectFiles expands the path arguments into ingestable files.
// Directories are walked recursively; hidden directories and files with
// unrecognized extensions are skipped.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if strings.HasPrefix(name, ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, ".") || languageForFile(path) == "plaintext" {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// ingestFile sends one file to the backend and renders the outcome.
func ingestFile(ctx context.Context, c *client.Client, renderer *ux.Renderer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		renderer.Errorf("%s: %v", path, err)
		return err
	}

	req := &protocol.IngestRequest{
		FilePath:  path,
		Content:   string(data),
		Language:  languageForFile(path),
		ProjectID: projectID,
	}
	resp, err := c.Ingest(ctx, req)
	if err != nil {
		if ce, ok := client.AsClientError(err); ok && verbose {
			renderer.Errorf("%s: %s", path, ce.FullError())
		} else {
			renderer.Errorf("%s: %v", path, err)
		}
		return err
	}

	renderer.Ingest(path, resp)
	return nil
}

// watchAndIngest re-ingests files as they change, until ctx is cancelled.
//
// Watches the given paths (directories watch their immediate children;
// fsnotify does not recurse) and re-ingests on create and write events.
func watchAndIngest(ctx context.Context, c *client.Client, renderer *ux.Renderer, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
	log.Info("watching for changes", "paths", strings.Join(paths, ", "))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if languageForFile(event.Name) == "plaintext" {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			log.Debug("change detected", "file", event.Name, "op", event.Op.String())
			_ = ingestFile(ctx, c, renderer, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}
