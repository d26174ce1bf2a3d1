// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package docgaps defines the public interface for docgaps, a tool that
// finds Python callables without docstrings and interactively fills them
// in.
package docgaps

import (
	"errors"
	"io"
	"time"
)

// Error types for the docgaps API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNoInput       = errors.New("nothing to scan")
)

// Config configures a run.
type Config struct {
	Paths []string // Files or directories to scan (required)

	Interactive bool   // Prompt for each gap instead of just reporting
	ReportFile  string // Also write the report to this file
	Quiet       bool   // Suppress the stdout report
	ShowBody    bool   // Show full definition bodies in prompts
	SkipStubs   bool   // Exclude pass/ellipsis-only bodies from gaps
	Commit      bool   // Commit patched files after an interactive run
	Concurrency int    // Parallel scan workers; <= 0 means NumCPU

	// Suggestion provider. An empty APIKey with the openai backend
	// disables the suggestion path; manual editing still works.
	Provider  string // "openai" (default) or "bedrock"
	Model     string
	BaseURL   string
	APIKey    string
	Region    string
	Timeout   time.Duration
	MaxTokens int

	Editor string // Editor command line; empty falls back to inline input

	// Streams, defaulted to the process streams when nil.
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Result holds the outcome of a run.
type Result struct {
	GapsFound     int      // Gaps detected by the initial scan
	Applied       int      // Docstrings inserted
	Skipped       int      // Gaps the user skipped
	Failed        int      // Gaps that ended in a failure
	Remaining     int      // Gaps still open when the run ended
	ParseFailures int      // Files tree-sitter could not parse
	PatchedFiles  []string // Files with at least one insertion
	Quit          bool     // Interactive session was aborted early
}

// ExitCode maps the result to the process exit code: 0 when no gaps
// remain, 1 when some do. Fatal conditions surface as errors from Run and
// map to 2 in the CLI.
func (r *Result) ExitCode() int {
	if r.Remaining > 0 || r.ParseFailures > 0 {
		return 1
	}
	return 0
}
