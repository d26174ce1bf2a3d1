// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package patch splices an accepted docstring into a source file as a pure
// insertion: every byte outside the insertion point is identical before and
// after, and the write is atomic (temp file plus rename).
package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/petar-djukic/docgaps/internal/source"
	"github.com/petar-djukic/docgaps/pkg/types"
)

// ErrStaleFile indicates the file changed on disk since it was scanned.
// The caller must rescan before retrying.
var ErrStaleFile = errors.New("file changed since scan")

// ErrInvalidDocstring indicates the candidate text cannot be inserted
// safely. Detected before any write.
var ErrInvalidDocstring = errors.New("invalid docstring text")

// ErrIOFailure indicates the write or rename failed. The original file is
// left untouched.
var ErrIOFailure = errors.New("write failure")

const delimiter = `"""`

// Apply inserts text as the docstring for the gap's definition. It re-reads
// the target file, verifies the checksum captured at scan time, builds the
// indented docstring block, and writes the result atomically, preserving the
// file's line-ending style.
func Apply(gap types.Gap, text string) (*types.Patch, error) {
	src, err := source.Load(gap.Span.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if src.Checksum != gap.Checksum {
		return nil, fmt.Errorf("%w: %s", ErrStaleFile, gap.Span.FilePath)
	}

	block, err := Block(text)
	if err != nil {
		return nil, err
	}

	p := buildPatch(gap.Span, block, src)
	if p.Offset < 0 || p.Offset > len(src.Content) {
		return nil, fmt.Errorf("%w: insertion offset %d outside %s", ErrStaleFile, p.Offset, gap.Span.FilePath)
	}
	p.Checksum = src.Checksum

	patched := make([]byte, 0, len(src.Content)+len(p.Insert))
	patched = append(patched, src.Content[:p.Offset]...)
	patched = append(patched, p.Insert...)
	patched = append(patched, src.Content[p.Offset:]...)

	if err := atomicWrite(gap.Span.FilePath, patched); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return p, nil
}

// Block normalizes candidate text into a triple-quoted docstring block.
// Text already wrapped in triple quotes is kept as-is; anything else is
// wrapped. Interior triple quotes cannot be escaped safely and are rejected.
func Block(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty text", ErrInvalidDocstring)
	}

	if strings.HasPrefix(text, delimiter) && strings.HasSuffix(text, delimiter) && len(text) >= 2*len(delimiter) {
		inner := text[len(delimiter) : len(text)-len(delimiter)]
		if strings.Contains(inner, delimiter) {
			return "", fmt.Errorf("%w: text contains %s", ErrInvalidDocstring, delimiter)
		}
		return text, nil
	}

	if strings.Contains(text, delimiter) {
		return "", fmt.Errorf("%w: text contains %s", ErrInvalidDocstring, delimiter)
	}
	if !strings.Contains(text, "\n") {
		return delimiter + text + delimiter, nil
	}
	return delimiter + "\n" + text + "\n" + delimiter, nil
}

// buildPatch computes the insertion point and the exact text to splice.
//
// For an ordinary indented body the block is inserted as whole lines before
// the body's first statement, each line carrying the body indentation. For
// an inline suite (def f(): pass) the block is inserted at the statement
// offset followed by "; ", which keeps the line a valid simple-statement
// suite.
func buildPatch(span types.DefinitionSpan, block string, src *source.SourceFile) *types.Patch {
	nl := src.Ending.Newline()

	if span.InlineBody {
		return &types.Patch{
			FilePath: span.FilePath,
			Offset:   span.BodyOffset,
			Insert:   block + "; ",
		}
	}

	var b strings.Builder
	for _, line := range strings.Split(block, "\n") {
		b.WriteString(span.BodyIndent)
		b.WriteString(strings.TrimRight(line, "\r"))
		b.WriteString(nl)
	}

	return &types.Patch{
		FilePath: span.FilePath,
		Offset:   span.BodyOffset - span.BodyCol, // Start of the body line.
		Insert:   b.String(),
	}
}

// atomicWrite writes data to a temp file in the same directory, then renames
// it to the target path. A crash mid-write never leaves a truncated target.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	// Preserve original file permissions if the file exists.
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, ".docgaps-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
