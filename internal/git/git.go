// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git commits applied docstring patches and can undo the last
// docgaps commit. Entirely optional; a missing repository is a diagnostic,
// never a failure.
package git

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "docgaps"
	authorEmail = "noreply@docgaps"
	trailer     = "Docstrings-By: docgaps"
)

// ErrNotDocgapsCommit is returned when undo targets a commit not made by docgaps.
var ErrNotDocgapsCommit = errors.New("not a docgaps commit")

// ErrNoGit is returned when the working directory is not a git repository.
var ErrNoGit = errors.New("not a git repository")

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo *gogit.Repository
}

// Open opens an existing git repository at dir (or any parent of it).
// Returns ErrNoGit if no repository is found.
func Open(dir string) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r}, nil
}

// IsDirty returns true if the working tree has uncommitted changes.
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	return !status.IsClean(), nil
}

// CommitDocstrings stages exactly the patched files and commits them with a
// generated message carrying the docgaps trailer.
func (r *Repo) CommitDocstrings(patchedFiles []string, docstringCount int) error {
	if len(patchedFiles) == 0 {
		return nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	root := wt.Filesystem.Root()
	for _, f := range patchedFiles {
		rel := relToRoot(root, f)
		if _, err := wt.Add(rel); err != nil {
			return fmt.Errorf("staging %s: %w", rel, err)
		}
	}

	msg := commitMessage(patchedFiles, docstringCount)
	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

// Undo reverts the last commit if it carries the docgaps trailer. Uses a
// soft reset so the inserted docstrings stay in the working tree.
func (r *Repo) Undo() error {
	isOurs, err := r.isDocgapsCommit()
	if err != nil {
		return err
	}
	if !isOurs {
		return ErrNotDocgapsCommit
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("getting commit: %w", err)
	}

	if commit.NumParents() == 0 {
		return fmt.Errorf("cannot undo: HEAD is the initial commit")
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return fmt.Errorf("getting parent commit: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	err = wt.Reset(&gogit.ResetOptions{
		Commit: parent.Hash,
		Mode:   gogit.SoftReset,
	})
	if err != nil {
		return fmt.Errorf("resetting to parent: %w", err)
	}

	return nil
}

// isDocgapsCommit checks whether HEAD carries the docgaps trailer.
func (r *Repo) isDocgapsCommit() (bool, error) {
	head, err := r.repo.Head()
	if err != nil {
		return false, fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return false, fmt.Errorf("getting commit: %w", err)
	}

	return strings.Contains(commit.Message, trailer), nil
}

// commitMessage builds the commit text: a docs-type subject, the patched
// file list, and the trailer used by Undo.
func commitMessage(patchedFiles []string, docstringCount int) string {
	noun := "docstrings"
	if docstringCount == 1 {
		noun = "docstring"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "docs: add %d missing %s\n\n", docstringCount, noun)
	b.WriteString("Patched files:\n")
	for _, f := range patchedFiles {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("\n" + trailer)
	return b.String()
}

// relToRoot makes path relative to the worktree root when possible; go-git
// staging expects worktree-relative paths.
func relToRoot(root, path string) string {
	if strings.HasPrefix(path, root) {
		rel := strings.TrimPrefix(path, root)
		return strings.TrimPrefix(rel, "/")
	}
	return path
}
