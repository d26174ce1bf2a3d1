// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across docgaps packages.
package types

// DefKind identifies the category of a callable definition.
type DefKind int

const (
	Function      DefKind = iota // Module-level or nested function
	Method                       // Function defined inside a class body
	AsyncFunction                // Function declared with async def
)

// String returns the human-readable name of the definition kind.
func (k DefKind) String() string {
	switch k {
	case Function:
		return "function"
	case Method:
		return "method"
	case AsyncFunction:
		return "async function"
	default:
		return "unknown"
	}
}

// DefinitionSpan describes one callable definition discovered in a source
// file. Positions are 1-based lines and 0-based byte columns, matching
// tree-sitter's coordinate model.
type DefinitionSpan struct {
	QualifiedName string  // Dotted path through enclosing classes and functions
	Kind          DefKind // Function, method, or async function
	FilePath      string  // Source file path
	Line          int     // Line of the def keyword (1-based)
	Col           int     // Column of the def keyword (0-based, bytes)
	BodyLine      int     // Line of the body's first statement (1-based)
	BodyCol       int     // Column of the body's first statement (0-based, bytes)
	BodyOffset    int     // Byte offset of the body's first statement
	BodyIndent    string  // Leading whitespace of the body line
	InlineBody    bool    // Body shares a line with the signature (def f(): pass)
	HasDocstring  bool    // First body statement is a string literal
	IsStub        bool    // Body is only pass and/or ellipsis statements
	Signature     string  // The def header text up to and including the colon
	Source        string  // Bounded source of the whole definition, for prompting
}

// Gap is a definition span that lacks a docstring, bound to the checksum of
// the file content it was discovered in. Gaps are never mutated; a rescan of
// the file produces a fresh set and discards the old one.
type Gap struct {
	Span     DefinitionSpan
	Checksum string // SHA-256 hex of the file content at scan time
}
