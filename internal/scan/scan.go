// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scan finds callable definitions in Python source and reports the
// ones missing a docstring. Parsing is done with tree-sitter, so files that
// CPython itself would reject still fail cleanly at file granularity.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/petar-djukic/docgaps/internal/source"
	"github.com/petar-djukic/docgaps/pkg/types"
)

// ErrParseFailure indicates the file could not be parsed as Python.
var ErrParseFailure = errors.New("parse failure")

// maxSourceLines bounds the definition source captured for LLM prompting.
const maxSourceLines = 60

// Policy controls which definitions count as gaps.
type Policy struct {
	// SkipStubs excludes pass/ellipsis-only bodies (overload and protocol
	// declarations) from gap reporting. By default stubs count as gaps.
	SkipStubs bool
}

// File extracts every callable definition from the file, ordered by source
// position (pre-order over nesting). It is a pure function of the file
// content: identical input yields an identical, identically ordered result.
func File(src *source.SourceFile) ([]types.DefinitionSpan, error) {
	root, err := sitter.ParseCtx(context.Background(), src.Content, python.GetLanguage())
	if err != nil || root == nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFailure, src.Path, err)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s: syntax error", ErrParseFailure, src.Path)
	}

	w := &walker{content: src.Content, path: src.Path}
	w.walk(root, rootScope)
	return w.spans, nil
}

// Gaps scans the file and returns the definitions missing a docstring,
// each stamped with the file checksum captured at load time.
func Gaps(src *source.SourceFile, policy Policy) ([]types.Gap, error) {
	spans, err := File(src)
	if err != nil {
		return nil, err
	}

	var gaps []types.Gap
	for _, span := range spans {
		if span.HasDocstring {
			continue
		}
		if span.IsStub && policy.SkipStubs {
			continue
		}
		gaps = append(gaps, types.Gap{Span: span, Checksum: src.Checksum})
	}
	return gaps, nil
}

// walker accumulates definition spans during a pre-order tree walk.
type walker struct {
	content []byte
	path    string
	arena   scopeArena
	spans   []types.DefinitionSpan
}

func (w *walker) walk(node *sitter.Node, scope int) {
	switch node.Type() {
	case "function_definition":
		idx := w.visitFunction(node, scope)
		if body := node.ChildByFieldName("body"); body != nil {
			w.walkChildren(body, idx)
		}
		return
	case "class_definition":
		name := fieldText(node, "name", w.content)
		idx := w.arena.add(name, scope, true)
		if body := node.ChildByFieldName("body"); body != nil {
			w.walkChildren(body, idx)
		}
		return
	}
	w.walkChildren(node, scope)
}

func (w *walker) walkChildren(node *sitter.Node, scope int) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.walk(node.NamedChild(i), scope)
	}
}

// visitFunction records a span for the definition and returns the arena
// index for its body scope.
func (w *walker) visitFunction(node *sitter.Node, scope int) int {
	name := fieldText(node, "name", w.content)
	idx := w.arena.add(name, scope, false)

	body := node.ChildByFieldName("body")
	if body == nil {
		return idx
	}
	first := firstStatement(body)
	if first == nil {
		return idx
	}

	span := types.DefinitionSpan{
		QualifiedName: w.arena.qualified(scope, name),
		Kind:          w.kind(node, scope),
		FilePath:      w.path,
		Line:          int(node.StartPoint().Row) + 1,
		Col:           int(node.StartPoint().Column),
		BodyLine:      int(first.StartPoint().Row) + 1,
		BodyCol:       int(first.StartPoint().Column),
		BodyOffset:    int(first.StartByte()),
		HasDocstring:  isDocstring(first),
		IsStub:        isStubBody(body),
		Signature:     w.signature(node, body),
		Source:        w.definitionSource(node),
	}
	span.BodyIndent, span.InlineBody = w.bodyIndent(node, span.BodyOffset, span.BodyCol)

	w.spans = append(w.spans, span)
	return idx
}

// kind classifies the definition. Async wins over method so async methods
// surface the async behavior.
func (w *walker) kind(node *sitter.Node, scope int) types.DefKind {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == "async" {
			return types.AsyncFunction
		}
		if c.Type() == "def" {
			break
		}
	}
	if w.arena.isClass(scope) {
		return types.Method
	}
	return types.Function
}

// signature returns the def header from the def (or async) keyword through
// the terminating colon, with trailing whitespace removed.
func (w *walker) signature(node *sitter.Node, body *sitter.Node) string {
	start := node.StartByte()
	end := body.StartByte()
	if end > uint32(len(w.content)) || start >= end {
		return ""
	}
	return strings.TrimRight(string(w.content[start:end]), " \t\r\n")
}

// bodyIndent returns the leading whitespace of the body line, and whether
// the body shares a line with the signature. For inline bodies the returned
// indent is the def line's indent plus one level, usable for templates.
func (w *walker) bodyIndent(node *sitter.Node, bodyOffset, bodyCol int) (string, bool) {
	lineStart := bodyOffset - bodyCol
	prefix := string(w.content[lineStart:bodyOffset])
	if strings.TrimLeft(prefix, " \t") == "" {
		return prefix, false
	}

	// Inline suite: derive one extra level from the def line.
	defStart := int(node.StartByte())
	defLineStart := defStart - int(node.StartPoint().Column)
	defPrefix := string(w.content[defLineStart:defStart])
	if strings.TrimLeft(defPrefix, " \t") != "" {
		defPrefix = ""
	}
	return defPrefix + "    ", true
}

// definitionSource returns the source of the whole definition, including
// decorators, truncated to a bounded number of lines.
func (w *walker) definitionSource(node *sitter.Node) string {
	outer := node
	if p := node.Parent(); p != nil && p.Type() == "decorated_definition" {
		outer = p
	}
	text := string(w.content[outer.StartByte():outer.EndByte()])
	lines := strings.Split(text, "\n")
	if len(lines) > maxSourceLines {
		lines = lines[:maxSourceLines]
		text = strings.Join(lines, "\n")
	}
	return text
}

// firstStatement returns the first non-comment statement of a block.
func firstStatement(block *sitter.Node) *sitter.Node {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		c := block.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		return c
	}
	return nil
}

// isDocstring reports whether the statement is a string-literal expression.
// f-strings carry interpolation children and do not count, matching the
// behavior of ast.get_docstring.
func isDocstring(stmt *sitter.Node) bool {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return false
	}
	expr := stmt.NamedChild(0)
	if expr.Type() != "string" {
		return false
	}
	for i := 0; i < int(expr.NamedChildCount()); i++ {
		if expr.NamedChild(i).Type() == "interpolation" {
			return false
		}
	}
	return true
}

// isStubBody reports whether every statement of the block is a placeholder:
// pass, or a bare ellipsis expression.
func isStubBody(block *sitter.Node) bool {
	seen := false
	for i := 0; i < int(block.NamedChildCount()); i++ {
		c := block.NamedChild(i)
		switch c.Type() {
		case "comment":
			continue
		case "pass_statement":
			seen = true
		case "expression_statement":
			if c.NamedChildCount() != 1 || c.NamedChild(0).Type() != "ellipsis" {
				return false
			}
			seen = true
		default:
			return false
		}
	}
	return seen
}

// fieldText returns the text of a named field child, or "" when absent.
func fieldText(node *sitter.Node, field string, content []byte) string {
	c := node.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return c.Content(content)
}
