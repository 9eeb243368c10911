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

	"github.com/codewhisperer-ai/whisper/pkg/connstate"
	"github.com/codewhisperer-ai/whisper/pkg/orchestrator"
	"github.com/codewhisperer-ai/whisper/pkg/protocol"
	"github.com/codewhisperer-ai/whisper/pkg/ux"
)

func runAskCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queryType, known := protocol.ParseQueryType(queryTypeFlag)
	if !known {
		return fmt.Errorf("unknown query type %q (valid: %v)", queryTypeFlag, protocol.AllQueryTypes)
	}

	editor, err := buildEditorSurface(args)
	if err != nil {
		return err
	}

	c := newClient()
	tracker := connstate.NewTracker()
	orch := orchestrator.New(c, tracker, editor,
		orchestrator.WithLogger(log.Slog()),
		orchestrator.WithIncludeExamples(!noExamples),
	)
	renderer := ux.NewRenderer(os.Stdout, ux.WithVerbose(verbose))

	// Health check first so the orchestrator's gate sees a real state
	// instead of unknown.
	snap := orch.TestConnection(ctx)
	if snap.State != connstate.StateConnected {
		renderer.Connection(snap)
	}

	res := orch.Submit(ctx, queryText, queryType)
	renderer.Result(res)

	if res.Kind == orchestrator.ResultFailed {
		return fmt.Errorf("query failed: %s", res.Message)
	}
	return nil
}
