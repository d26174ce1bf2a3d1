// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package editor launches the user's external editor on a temporary buffer
// and guarantees the buffer is read back and removed whether the editor
// exits cleanly or not.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoEditor indicates no editor command is configured.
var ErrNoEditor = errors.New("no editor configured")

// commentPrefix marks helper lines stripped from the buffer on read-back.
const commentPrefix = "#"

// Launcher runs an external editor command on temporary buffer files.
type Launcher struct {
	// Command is the editor command line, e.g. "vim" or "code --wait".
	// Split on whitespace with quoting honored; the buffer path is appended
	// as the last argument.
	Command string
}

// Edit opens the editor with the given initial buffer content and returns
// the edited text. The buffer file is created before launch and always read
// back and removed afterward, so an editor crash never loses work already
// flushed to the buffer. Lines starting with '#' are stripped, as is
// surrounding whitespace.
//
// The returned text is valid even when err is non-nil: it holds whatever the
// buffer contained when the editor exited.
func (l *Launcher) Edit(initial string) (string, error) {
	if strings.TrimSpace(l.Command) == "" {
		return "", ErrNoEditor
	}

	f, err := os.CreateTemp("", "docgaps-*.py")
	if err != nil {
		return "", fmt.Errorf("creating edit buffer: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", fmt.Errorf("writing edit buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing edit buffer: %w", err)
	}

	args := append(splitCommand(l.Command), path)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	runErr := cmd.Run()

	// Read back regardless of how the editor exited.
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if runErr != nil {
			return "", fmt.Errorf("editor failed: %w", runErr)
		}
		return "", fmt.Errorf("reading edit buffer: %w", readErr)
	}

	text := stripComments(string(data))
	if runErr != nil {
		return text, fmt.Errorf("editor exited abnormally: %w", runErr)
	}
	return text, nil
}

// splitCommand splits a command line into arguments, honoring single and
// double quotes so commands like `code --user-data-dir "/tmp/my dir"` keep
// spaced arguments intact. An unterminated quote runs to the end of the
// string.
func splitCommand(s string) []string {
	var args []string
	var cur strings.Builder
	quote := byte(0)
	started := false

	flush := func() {
		if started {
			args = append(args, cur.String())
			cur.Reset()
			started = false
		}
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteByte(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			started = true
		case ch == ' ' || ch == '\t':
			flush()
		default:
			cur.WriteByte(ch)
			started = true
		}
	}
	flush()
	return args
}

// Skeleton builds the initial buffer for a manual edit: a commented header
// naming the definition, followed by an empty docstring body.
func Skeleton(qualifiedName, signature string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Docstring for %s\n", commentPrefix, qualifiedName)
	for _, line := range strings.Split(signature, "\n") {
		fmt.Fprintf(&b, "%s   %s\n", commentPrefix, line)
	}
	fmt.Fprintf(&b, "%s Lines starting with '%s' are ignored.\n", commentPrefix, commentPrefix)
	b.WriteString("\"\"\"\n\n\"\"\"\n")
	return b.String()
}

// stripComments removes helper comment lines and surrounding whitespace.
func stripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), commentPrefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
