// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gitpkg "github.com/petar-djukic/docgaps/internal/git"
	"github.com/petar-djukic/docgaps/pkg/docgaps"
)

// exitCode is set by the root command and used by main once cobra returns.
// 0 means no gaps remain, 1 means some do, 2 means a fatal error.
var exitCode int

// newRootCmd creates the root scan command.
func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docgaps [paths...]",
		Short: "Find and fill missing Python docstrings",
		Long: "docgaps scans Python files or directories for function and method\n" +
			"definitions without docstrings. By default it prints one report line\n" +
			"per gap; with --interactive it walks the gaps one by one, inserting\n" +
			"docstrings written in your editor or suggested by an LLM.",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         runScan,
	}
}

// runScan executes the scan in report or interactive mode.
func runScan(cmd *cobra.Command, args []string) error {
	cfg := docgaps.Config{
		Paths:       args,
		Interactive: viper.GetBool("interactive"),
		ReportFile:  viper.GetString("report"),
		Quiet:       viper.GetBool("quiet"),
		ShowBody:    viper.GetBool("show-body"),
		SkipStubs:   viper.GetBool("skip-stubs"),
		Commit:      viper.GetBool("commit"),
		Concurrency: viper.GetInt("concurrency"),
		Provider:    viper.GetString("provider"),
		Model:       viper.GetString("model"),
		BaseURL:     viper.GetString("base-url"),
		APIKey:      resolveAPIKey(),
		Region:      viper.GetString("region"),
		Timeout:     viper.GetDuration("timeout"),
		MaxTokens:   viper.GetInt("max-tokens"),
		Editor:      resolveEditor(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := docgaps.Run(ctx, cfg)
	if err != nil {
		exitCode = 2
		return err
	}

	exitCode = result.ExitCode()
	return nil
}

// resolveAPIKey prefers DOCGAPS_API_KEY and falls back to OPENAI_API_KEY.
func resolveAPIKey() string {
	if key := viper.GetString("api_key"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// resolveEditor prefers DOCGAPS_EDITOR and falls back to EDITOR.
func resolveEditor() string {
	if ed := viper.GetString("editor"); ed != "" {
		return ed
	}
	return os.Getenv("EDITOR")
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last docgaps commit",
		Long:  "Undo performs a soft reset of the last commit if it was made by docgaps.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitpkg.Open(".")
			if err != nil {
				exitCode = 2
				return fmt.Errorf("opening repository: %w", err)
			}

			if err := repo.Undo(); err != nil {
				exitCode = 2
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Println("Reverted last docgaps commit.")
			return nil
		},
	}
}
