// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytes_LineEndings(t *testing.T) {
	tests := []struct {
		name string
		data string
		want LineEnding
	}{
		{"unix", "def f():\n    pass\n", LF},
		{"windows", "def f():\r\n    pass\r\n", CRLF},
		{"no newline", "x = 1", LF},
		{"empty", "", LF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := FromBytes("test.py", []byte(tt.data))
			assert.Equal(t, tt.want, src.Ending)
		})
	}
}

func TestNewline(t *testing.T) {
	assert.Equal(t, "\n", LF.Newline())
	assert.Equal(t, "\r\n", CRLF.Newline())
}

func TestFromBytes_ChecksumIsStable(t *testing.T) {
	a := FromBytes("a.py", []byte("x = 1\n"))
	b := FromBytes("b.py", []byte("x = 1\n"))
	c := FromBytes("c.py", []byte("x = 2\n"))

	assert.Equal(t, a.Checksum, b.Checksum)
	assert.NotEqual(t, a.Checksum, c.Checksum)
	assert.Len(t, a.Checksum, 64)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.py")
	content := "def f():\n    return 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Path)
	assert.Equal(t, content, src.Text())
	assert.Equal(t, LF, src.Ending)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.py"))
	assert.Error(t, err)
}
