// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report renders gap listings in the stable one-line-per-gap format
// consumed by both humans and CI parsers.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/petar-djukic/docgaps/pkg/types"
)

// Line formats a single gap as <path>:<line>: <qualified_name>.
func Line(gap types.Gap) string {
	return fmt.Sprintf("%s:%d: %s", gap.Span.FilePath, gap.Span.Line, gap.Span.QualifiedName)
}

// Render returns the report text for the gaps: one line per gap, ordered by
// file path (lexical) then line number. The trailing newline is included
// when there is at least one gap.
func Render(gaps []types.Gap) string {
	ordered := make([]types.Gap, len(gaps))
	copy(ordered, gaps)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Span.FilePath != ordered[j].Span.FilePath {
			return ordered[i].Span.FilePath < ordered[j].Span.FilePath
		}
		return ordered[i].Span.Line < ordered[j].Span.Line
	})

	var b strings.Builder
	for _, g := range ordered {
		b.WriteString(Line(g))
		b.WriteByte('\n')
	}
	return b.String()
}

// Write renders the gaps to w.
func Write(w io.Writer, gaps []types.Gap) error {
	_, err := io.WriteString(w, Render(gaps))
	return err
}

// WriteFile writes the rendered report to path.
func WriteFile(path string, gaps []types.Gap) error {
	if err := os.WriteFile(path, []byte(Render(gaps)), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
