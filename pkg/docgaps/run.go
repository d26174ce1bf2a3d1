// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package docgaps

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/petar-djukic/docgaps/internal/editor"
	"github.com/petar-djukic/docgaps/internal/git"
	"github.com/petar-djukic/docgaps/internal/llm"
	"github.com/petar-djukic/docgaps/internal/report"
	"github.com/petar-djukic/docgaps/internal/scan"
	"github.com/petar-djukic/docgaps/internal/session"
	"github.com/petar-djukic/docgaps/pkg/types"
)

// Run scans the configured paths and either prints the gap report or walks
// the gaps interactively. It returns an error only for fatal conditions
// (nothing scannable, report unwritable); per-file parse failures are
// diagnostics counted in the result.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("%w: at least one path is required", ErrInvalidConfig)
	}
	applyStreamDefaults(&cfg)

	policy := scan.Policy{SkipStubs: cfg.SkipStubs}
	results, err := scan.Collect(cfg.Paths, scan.Options{
		Concurrency: cfg.Concurrency,
		Policy:      policy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInput, err)
	}

	res := &Result{}
	var gaps []types.Gap
	for _, r := range results {
		if r.Err != nil {
			res.ParseFailures++
			fmt.Fprintf(cfg.ErrOut, "warning: %s: %v\n", r.Path, r.Err)
			continue
		}
		gaps = append(gaps, r.Gaps...)
	}
	if res.ParseFailures == len(results) {
		return res, fmt.Errorf("%w: every file failed to parse", ErrNoInput)
	}
	res.GapsFound = len(gaps)
	res.Remaining = len(gaps)

	if !cfg.Interactive {
		return res, runReport(cfg, res, gaps)
	}
	return res, runInteractive(ctx, cfg, res, results, policy)
}

// runReport prints one line per gap and optionally writes the same report
// to a file.
func runReport(cfg Config, res *Result, gaps []types.Gap) error {
	if !cfg.Quiet {
		if err := report.Write(cfg.Out, gaps); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	if cfg.ReportFile != "" {
		if err := report.WriteFile(cfg.ReportFile, gaps); err != nil {
			return fmt.Errorf("writing report to %s: %w", cfg.ReportFile, err)
		}
	}
	return nil
}

// runInteractive walks the gaps with the session controller and optionally
// commits the patched files afterward.
func runInteractive(ctx context.Context, cfg Config, res *Result, results []scan.FileResult, policy scan.Policy) error {
	provider := buildProvider(ctx, cfg)
	if cfg.Commit {
		warnDirtyTree(cfg)
	}

	ctrl := session.New(session.Config{
		Policy:   policy,
		ShowBody: cfg.ShowBody,
	}, provider, &editor.Launcher{Command: cfg.Editor}, cfg.In, cfg.Out, cfg.ErrOut)

	outcome, err := ctrl.Run(ctx, results)
	if outcome != nil {
		res.Applied = outcome.Applied
		res.Skipped = outcome.Skipped
		res.Failed = outcome.Failed
		res.Remaining = outcome.Remaining
		res.PatchedFiles = outcome.PatchedFiles
		res.Quit = outcome.Quit
	}
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		fmt.Fprintf(cfg.Out, "\n%d inserted, %d skipped, %d failed.\n",
			res.Applied, res.Skipped, res.Failed)
		if provider != nil {
			if u := provider.Usage(); u.Total() > 0 {
				fmt.Fprintf(cfg.Out, "Suggestion tokens: %d in, %d out.\n",
					u.InputTokens, u.OutputTokens)
			}
		}
	}

	if cfg.Commit && res.Applied > 0 {
		commitPatched(cfg, res)
	}
	return nil
}

// buildProvider constructs the suggestion provider, or returns nil to
// disable the suggestion path. A missing credential is a diagnostic, not a
// failure.
func buildProvider(ctx context.Context, cfg Config) llm.Provider {
	provider, err := llm.New(ctx, llm.Config{
		Backend:   llm.Backend(cfg.Provider),
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Region:    cfg.Region,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNoCredential) {
			fmt.Fprintln(cfg.ErrOut, "note: no API key configured; suggestions disabled, manual editing only")
		} else {
			fmt.Fprintf(cfg.ErrOut, "note: suggestion provider unavailable: %v\n", err)
		}
		return nil
	}
	return provider
}

// warnDirtyTree flags pre-existing uncommitted changes before an
// interactive run that will commit, so the user knows the docstring commit
// stages only the files patched in this run.
func warnDirtyTree(cfg Config) {
	repo, err := git.Open(cfg.Paths[0])
	if err != nil {
		return
	}
	dirty, err := repo.IsDirty()
	if err != nil || !dirty {
		return
	}
	fmt.Fprintln(cfg.ErrOut, "note: working tree already has uncommitted changes; only files patched in this run will be committed")
}

// commitPatched commits the patched files when the scan root is inside a
// git repository. A missing repository only produces a diagnostic.
func commitPatched(cfg Config, res *Result) {
	repo, err := git.Open(cfg.Paths[0])
	if err != nil {
		fmt.Fprintf(cfg.ErrOut, "note: not committing: %v\n", err)
		return
	}
	if err := repo.CommitDocstrings(res.PatchedFiles, res.Applied); err != nil {
		fmt.Fprintf(cfg.ErrOut, "warning: commit failed: %v\n", err)
		return
	}
	if !cfg.Quiet {
		fmt.Fprintf(cfg.Out, "Committed %d file(s).\n", len(res.PatchedFiles))
	}
}

func applyStreamDefaults(cfg *Config) {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.ErrOut == nil {
		cfg.ErrOut = os.Stderr
	}
}
