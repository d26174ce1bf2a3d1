// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command docgaps scans Python source trees for callables without
// docstrings, reports them, and interactively inserts docstrings.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := newRootCmd()
	configure(rootCmd)

	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
	os.Exit(exitCode)
}

// configure registers the root flags and binds them to viper, environment
// variables, and the optional config file.
func configure(rootCmd *cobra.Command) {
	rootCmd.Flags().BoolP("interactive", "i", false, "Prompt for each gap instead of just reporting")
	rootCmd.Flags().StringP("report", "r", "", "Also write the report to this file")
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress the stdout report")
	rootCmd.Flags().Bool("show-body", false, "Show full definition bodies in prompts")
	rootCmd.Flags().Bool("skip-stubs", false, "Do not report pass/ellipsis-only bodies as gaps")
	rootCmd.Flags().Bool("commit", false, "Commit patched files after an interactive run")
	rootCmd.Flags().Int("concurrency", 0, "Parallel scan workers (0 = number of CPUs)")
	rootCmd.Flags().String("provider", "openai", "Suggestion backend: openai or bedrock")
	rootCmd.Flags().String("model", "gpt-4o-mini", "Model identifier for suggestions")
	rootCmd.Flags().String("base-url", "", "OpenAI-compatible endpoint base URL")
	rootCmd.Flags().String("region", "", "AWS region (bedrock backend)")
	rootCmd.Flags().Duration("timeout", 0, "Per-suggestion timeout (default 60s)")
	rootCmd.Flags().Int("max-tokens", 0, "Suggestion response token cap (default 1024)")

	// Bind flags to viper.
	viper.BindPFlags(rootCmd.Flags())

	// Env vars: DOCGAPS_MODEL, DOCGAPS_BASE_URL, etc. The replacer maps
	// dashed flag keys (base-url) onto underscored env names (BASE_URL).
	viper.SetEnvPrefix("DOCGAPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".docgaps")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print docgaps version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docgaps %s\n", version)
		},
	}
}
