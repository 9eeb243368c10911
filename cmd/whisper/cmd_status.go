// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codewhisperer-ai/whisper/pkg/client"
	"github.com/codewhisperer-ai/whisper/pkg/connstate"
	"github.com/codewhisperer-ai/whisper/pkg/ux"
)

func runStatusCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newClient()
	renderer := ux.NewRenderer(os.Stdout, ux.WithVerbose(verbose))

	tracker := connstate.NewTracker()
	tracker.BeginCheck()
	tracker.Apply(c.HealthCheck(ctx))
	renderer.Connection(tracker.Snapshot())

	if !tracker.CanSubmit() {
		return fmt.Errorf("backend at %s is not reachable", cfg.Backend.BaseURL)
	}

	status, err := c.Status(ctx)
	if err != nil {
		if ce, ok := client.AsClientError(err); ok {
			renderer.Errorf("%s", ce.Message)
			if verbose {
				renderer.Errorf("%s", ce.FullError())
			}
			return err
		}
		return err
	}
	renderer.Status(status)
	return nil
}

// runHealthCommand probes the backend once. The exit code is the result:
// zero when the backend answers healthy, non-zero otherwise, so scripts
// can gate on `whisper health`.
func runHealthCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newClient()
	renderer := ux.NewRenderer(os.Stdout, ux.WithVerbose(verbose))

	tracker := connstate.NewTracker()
	tracker.BeginCheck()
	tracker.Apply(c.HealthCheck(ctx))
	renderer.Connection(tracker.Snapshot())

	if !tracker.CanSubmit() {
		return fmt.Errorf("backend at %s is not healthy", cfg.Backend.BaseURL)
	}
	return nil
}
