// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package patch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/docgaps/internal/scan"
	"github.com/petar-djukic/docgaps/pkg/types"
)

// writeAndScan writes content to a temp file and returns its single gap.
func writeAndScan(t *testing.T, content string) (string, types.Gap) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	gaps, err := scan.ScanFile(path, scan.Policy{})
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	return path, gaps[0]
}

func TestApply_InsertsDocstring(t *testing.T) {
	path, gap := writeAndScan(t, "def f(x):\n    return x\n")

	_, err := Apply(gap, "Return x unchanged.")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "def f(x):\n    \"\"\"Return x unchanged.\"\"\"\n    return x\n", string(data))
}

func TestApply_IsPureInsertion(t *testing.T) {
	content := "import os\n\n\ndef f(x):\n    return x\n\n\nTAIL = 1\n"
	path, gap := writeAndScan(t, content)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	p, err := Apply(gap, "Doc.")
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)

	// Every byte outside the inserted range is unchanged.
	assert.Equal(t, before[:p.Offset], after[:p.Offset])
	assert.Equal(t, []byte(p.Insert), after[p.Offset:p.Offset+len(p.Insert)])
	assert.Equal(t, before[p.Offset:], after[p.Offset+len(p.Insert):])
}

func TestApply_MultilineIndentation(t *testing.T) {
	path, gap := writeAndScan(t, "class C:\n    def m(self):\n        return 1\n")

	_, err := Apply(gap, "Summary.\n\nDetails here.")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "class C:\n    def m(self):\n" +
		"        \"\"\"\n" +
		"        Summary.\n" +
		"        \n" +
		"        Details here.\n" +
		"        \"\"\"\n" +
		"        return 1\n"
	assert.Equal(t, want, string(data))
}

func TestApply_PreservesCRLF(t *testing.T) {
	path, gap := writeAndScan(t, "def f():\r\n    return 1\r\n")

	_, err := Apply(gap, "Doc.")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "def f():\r\n    \"\"\"Doc.\"\"\"\r\n    return 1\r\n", string(data))
	assert.NotContains(t, string(bytes.ReplaceAll(data, []byte("\r\n"), nil)), "\n")
}

func TestApply_InlineSuite(t *testing.T) {
	path, gap := writeAndScan(t, "def tiny(): pass\n")

	_, err := Apply(gap, "Do nothing.")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "def tiny(): \"\"\"Do nothing.\"\"\"; pass\n", string(data))

	// The patched suite is still recognized as documented.
	gaps, err := scan.ScanFile(path, scan.Policy{})
	require.NoError(t, err)
	assert.Empty(t, gaps)
}

func TestApply_RescanShowsNoGap(t *testing.T) {
	path, gap := writeAndScan(t, "def f():\n    return 1\n")

	_, err := Apply(gap, "Doc.")
	require.NoError(t, err)

	gaps, err := scan.ScanFile(path, scan.Policy{})
	require.NoError(t, err)
	assert.Empty(t, gaps)
}

func TestApply_StaleFile(t *testing.T) {
	path, gap := writeAndScan(t, "def f():\n    return 1\n")

	// File changes after the scan.
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    return 2\n"), 0o644))

	_, err := Apply(gap, "Doc.")
	assert.ErrorIs(t, err, ErrStaleFile)

	// Changed content is untouched.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "def f():\n    return 2\n", string(data))
}

func TestApply_InvalidDocstringLeavesFileAlone(t *testing.T) {
	path, gap := writeAndScan(t, "def f():\n    return 1\n")

	_, err := Apply(gap, `bad """ inside`)
	assert.ErrorIs(t, err, ErrInvalidDocstring)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "def f():\n    return 1\n", string(data))
}

func TestApply_UnwritableDirLeavesFileAlone(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	path, gap := writeAndScan(t, "def f():\n    return 1\n")
	dir := filepath.Dir(path)
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	_, err := Apply(gap, "Doc.")
	assert.ErrorIs(t, err, ErrIOFailure)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "def f():\n    return 1\n", string(data))
}

func TestBlock(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"plain single line", "Doc.", `"""Doc."""`, false},
		{"plain multi line", "A.\nB.", "\"\"\"\nA.\nB.\n\"\"\"", false},
		{"already wrapped", `"""Doc."""`, `"""Doc."""`, false},
		{"whitespace trimmed", "  Doc.  ", `"""Doc."""`, false},
		{"empty", "   ", "", true},
		{"interior triple quote", `a """ b`, "", true},
		{"wrapped with interior triple quote", `"""a """ b"""`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Block(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocstring)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
