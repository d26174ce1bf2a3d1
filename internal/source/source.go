// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package source loads Python files into an immutable model carrying the
// original bytes, the line-ending style, and a content checksum.
package source

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// LineEnding identifies the newline convention of a file.
type LineEnding int

const (
	LF   LineEnding = iota // Unix newlines
	CRLF                   // Windows newlines
)

// Newline returns the literal newline sequence for the style.
func (e LineEnding) Newline() string {
	if e == CRLF {
		return "\r\n"
	}
	return "\n"
}

// SourceFile is one loaded file. It is immutable once constructed; after a
// patch is applied the file is loaded fresh rather than updated in place.
type SourceFile struct {
	Path     string
	Content  []byte
	Ending   LineEnding
	Checksum string // SHA-256 hex of Content
}

// Load reads the file at path and captures its content, line-ending style,
// and checksum. Files with no newline at all default to LF.
func Load(path string) (*SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return FromBytes(path, data), nil
}

// FromBytes constructs a SourceFile from in-memory content. Used by tests
// and by the scanner when content is already available.
func FromBytes(path string, data []byte) *SourceFile {
	ending := LF
	if i := bytes.IndexByte(data, '\n'); i > 0 && data[i-1] == '\r' {
		ending = CRLF
	}
	sum := sha256.Sum256(data)
	return &SourceFile{
		Path:     path,
		Content:  data,
		Ending:   ending,
		Checksum: hex.EncodeToString(sum[:]),
	}
}

// Text returns the content as a string.
func (s *SourceFile) Text() string {
	return string(s.Content)
}
