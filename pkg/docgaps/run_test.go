// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package docgaps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestRun_ReportMode(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.py": "def missing():\n    return 1\n",
		"b.py": "def ok():\n    \"\"\"doc\"\"\"\n",
	})

	var out, errOut bytes.Buffer
	result, err := Run(context.Background(), Config{
		Paths:  []string{dir},
		Out:    &out,
		ErrOut: &errOut,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.GapsFound)
	assert.Equal(t, 1, result.Remaining)
	assert.Equal(t, 1, result.ExitCode())
	assert.Equal(t, fmt.Sprintf("%s:1: missing\n", filepath.Join(dir, "a.py")), out.String())
}

func TestRun_ReportMode_NoGaps(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.py": "def ok():\n    \"\"\"doc\"\"\"\n",
	})

	var out bytes.Buffer
	result, err := Run(context.Background(), Config{Paths: []string{dir}, Out: &out, ErrOut: &out})
	require.NoError(t, err)

	assert.Zero(t, result.GapsFound)
	assert.Zero(t, result.ExitCode())
	assert.Empty(t, out.String())
}

func TestRun_ReportFile(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.py": "def missing():\n    return 1\n",
	})
	reportPath := filepath.Join(t.TempDir(), "report.txt")

	var out bytes.Buffer
	_, err := Run(context.Background(), Config{
		Paths:      []string{dir},
		ReportFile: reportPath,
		Quiet:      true,
		Out:        &out,
		ErrOut:     &out,
	})
	require.NoError(t, err)

	assert.Empty(t, out.String(), "quiet suppresses the stdout report")
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "missing")
}

func TestRun_ReportFileUnwritableIsFatal(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.py": "def missing():\n    return 1\n",
	})

	var out bytes.Buffer
	_, err := Run(context.Background(), Config{
		Paths:      []string{dir},
		ReportFile: filepath.Join(t.TempDir(), "absent", "report.txt"),
		Out:        &out,
		ErrOut:     &out,
	})
	assert.Error(t, err)
}

func TestRun_ParseFailureIsDiagnostic(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"bad.py":  "def broken(:\n",
		"good.py": "def g():\n    \"\"\"doc\"\"\"\n",
	})

	var out, errOut bytes.Buffer
	result, err := Run(context.Background(), Config{Paths: []string{dir}, Out: &out, ErrOut: &errOut})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ParseFailures)
	assert.Equal(t, 1, result.ExitCode())
	assert.Contains(t, errOut.String(), "bad.py")
}

func TestRun_AllFilesFailIsFatal(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"bad.py": "def broken(:\n",
	})

	var out bytes.Buffer
	_, err := Run(context.Background(), Config{Paths: []string{dir}, Out: &out, ErrOut: &out})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestRun_NoPathsIsInvalid(t *testing.T) {
	_, err := Run(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRun_MissingPathIsFatal(t *testing.T) {
	_, err := Run(context.Background(), Config{
		Paths:  []string{filepath.Join(t.TempDir(), "absent")},
		Out:    &bytes.Buffer{},
		ErrOut: &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestRun_InteractiveSkipAll(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.py": "def missing():\n    return 1\n",
	})

	var out bytes.Buffer
	result, err := Run(context.Background(), Config{
		Paths:       []string{dir},
		Interactive: true,
		In:          strings.NewReader("s\n"),
		Out:         &out,
		ErrOut:      &out,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Remaining)
	assert.Equal(t, 1, result.ExitCode())
	assert.Contains(t, out.String(), "0 inserted, 1 skipped, 0 failed")
}

func TestRun_InteractiveManualInsert(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.py": "def missing():\n    return 1\n",
	})

	var out bytes.Buffer
	result, err := Run(context.Background(), Config{
		Paths:       []string{dir},
		Interactive: true,
		In:          strings.NewReader("m\nAdded by hand.\n\na\n"),
		Out:         &out,
		ErrOut:      &out,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	assert.Zero(t, result.Remaining)
	assert.Zero(t, result.ExitCode())

	data, err := os.ReadFile(filepath.Join(dir, "a.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"""Added by hand."""`)
}

// commitAll turns the tree into a git repository with everything committed.
func commitAll(t *testing.T, dir string) {
	t.Helper()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddGlob("."))
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestRun_CommitWarnsOnDirtyTree(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.py": "def missing():\n    return 1\n",
	})
	commitAll(t, dir)

	run := func() string {
		var out, errOut bytes.Buffer
		_, err := Run(context.Background(), Config{
			Paths:       []string{dir},
			Interactive: true,
			Commit:      true,
			In:          strings.NewReader("s\n"),
			Out:         &out,
			ErrOut:      &errOut,
		})
		require.NoError(t, err)
		return errOut.String()
	}

	assert.NotContains(t, run(), "uncommitted changes")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.txt"), []byte("scratch\n"), 0o644))
	assert.Contains(t, run(), "uncommitted changes")
}

func TestResult_ExitCode(t *testing.T) {
	assert.Equal(t, 1, (&Result{GapsFound: 5, Applied: 3, Remaining: 2}).ExitCode())
	assert.Equal(t, 1, (&Result{ParseFailures: 1}).ExitCode())
	assert.Zero(t, (&Result{GapsFound: 2, Applied: 2}).ExitCode())
}
