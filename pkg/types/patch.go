// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// Patch records a single textual insertion applied to one file. It is
// constructed by the patch engine, applied exactly once, then discarded.
// Every byte outside the inserted range is identical before and after.
type Patch struct {
	FilePath string // Target file
	Offset   int    // Byte offset of the insertion
	Insert   string // Exact text spliced in (already indented)
	Checksum string // File checksum the insertion was computed against
}
