// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package scan

import "strings"

// scopeArena stores the definition scopes discovered while walking a parse
// tree. Each entry holds a weak parent index used only for name lookup, so
// qualified dotted names can be built without parent back-pointers in the
// tree itself.
type scopeArena struct {
	scopes []scopeEntry
}

type scopeEntry struct {
	name    string
	parent  int // Index into scopes; -1 for module level
	isClass bool
}

const rootScope = -1

// add appends a scope and returns its index.
func (a *scopeArena) add(name string, parent int, isClass bool) int {
	a.scopes = append(a.scopes, scopeEntry{name: name, parent: parent, isClass: isClass})
	return len(a.scopes) - 1
}

// qualified builds the dotted name for the scope at idx joined with name.
func (a *scopeArena) qualified(idx int, name string) string {
	if idx == rootScope {
		return name
	}
	var parts []string
	for i := idx; i != rootScope; i = a.scopes[i].parent {
		parts = append(parts, a.scopes[i].name)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
		b.WriteByte('.')
	}
	b.WriteString(name)
	return b.String()
}

// isClass reports whether the scope at idx is a class body.
func (a *scopeArena) isClass(idx int) bool {
	return idx != rootScope && a.scopes[idx].isClass
}
