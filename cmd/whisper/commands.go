// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codewhisperer-ai/whisper/cmd/whisper/config"
	"github.com/codewhisperer-ai/whisper/pkg/client"
	"github.com/codewhisperer-ai/whisper/pkg/logging"
)

// --- Global Command Variables ---
var (
	queryText     string
	queryTypeFlag string
	lineRange     string
	noExamples    bool
	readStdin     bool
	verbose       bool
	projectID     string
	watchMode     bool

	cfg config.Config
	log *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "whisper",
		Short: "A CLI for the Code Whisperer AI code assistant",
		Long: `Whisper is the host-side front end for the Code Whisperer backend.
It submits code analysis queries, ingests files into the knowledge base,
and reports backend health.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logCfg := logging.Config{
				Level:   logging.ParseLevel(cfg.Logging.Level),
				LogDir:  cfg.Logging.Dir,
				Service: "cli",
				JSON:    cfg.Logging.JSON,
			}
			if verbose {
				logCfg.Level = logging.LevelDebug
			}
			log = logging.New(logCfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Close()
			}
		},
	}

	askCmd = &cobra.Command{
		Use:   "ask [file]",
		Short: "Ask the backend about a piece of code",
		Long: `Ask submits a code analysis query. The code comes from the given file
(optionally narrowed with --lines), or from stdin with --stdin. Without a
question, a default one is derived from the query type.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAskCommand,
	}

	ingestCmd = &cobra.Command{
		Use:     "ingest [path...]",
		Short:   "Ingest files into the backend knowledge base",
		Aliases: []string{"i"},
		Args:    cobra.MinimumNArgs(1),
		RunE:    runIngestCommand,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show backend connection state and diagnostics",
		RunE:  runStatusCommand,
	}

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Probe backend health; exit code reflects reachability",
		RunE:  runHealthCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging and technical error detail")

	askCmd.Flags().StringVarP(&queryText, "query", "q", "", "the question to ask about the code")
	askCmd.Flags().StringVarP(&queryTypeFlag, "type", "t", "explain", "query type: explain, optimize, debug, refactor, generate, review")
	askCmd.Flags().StringVarP(&lineRange, "lines", "l", "", "line selection as start:end (1-based, inclusive)")
	askCmd.Flags().BoolVar(&noExamples, "no-examples", false, "ask the backend to skip example snippets")
	askCmd.Flags().BoolVar(&readStdin, "stdin", false, "read the code to analyze from stdin")

	ingestCmd.Flags().StringVar(&projectID, "project", "", "project identifier attached to ingested files")
	ingestCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "keep running and re-ingest files when they change")

	rootCmd.AddCommand(askCmd, ingestCmd, statusCmd, healthCmd)
}

// newClient builds the transport client from the loaded config.
// This is the composition root: the client is constructed here and
// injected downward, never shared through package state.
func newClient() *client.Client {
	return client.New(cfg.Backend.BaseURL,
		client.WithTimeout(time.Duration(cfg.Backend.TimeoutMs)*time.Millisecond),
		client.WithLogger(log.Slog()),
	)
}
