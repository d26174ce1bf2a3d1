// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package session drives the interactive docstring flow: one small state
// machine per gap, choosing manual editing or an LLM suggestion, reviewing
// the candidate, and handing accepted text to the patch engine.
//
// Within one file the controller always patches a single gap, rescans, and
// recomputes the remaining gaps before touching the next one, so insertion
// offsets are never reused after they have shifted.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/petar-djukic/docgaps/internal/editor"
	"github.com/petar-djukic/docgaps/internal/llm"
	"github.com/petar-djukic/docgaps/internal/patch"
	"github.com/petar-djukic/docgaps/internal/scan"
	"github.com/petar-djukic/docgaps/pkg/types"
)

// State is a step in the per-gap flow.
type State int

const (
	Pending State = iota
	EditingManual
	RequestingSuggestion
	Reviewing
	Applied
	Skipped
	Failed
)

// stateQuit aborts the whole session. Internal sentinel, never displayed.
const stateQuit State = -1

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case EditingManual:
		return "editing"
	case RequestingSuggestion:
		return "requesting"
	case Reviewing:
		return "reviewing"
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config configures a session.
type Config struct {
	Policy   scan.Policy // Gap policy, reused for post-patch rescans
	ShowBody bool        // Show full definition source instead of the signature
}

// Outcome summarizes a finished (or aborted) session.
type Outcome struct {
	Applied      int
	Skipped      int
	Failed       int
	Remaining    int      // Gaps still without a docstring when the session ended
	PatchedFiles []string // Files with at least one applied patch
	Quit         bool     // User aborted before the end
}

// Controller runs the interactive session. Provider may be nil, which
// disables the suggestion path but not manual editing.
type Controller struct {
	cfg      Config
	provider llm.Provider
	launcher *editor.Launcher
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer

	// handled counts resolved (skipped or failed) occurrences per
	// file+qualified-name, so rescans do not re-prompt them. Counts, not
	// booleans, because overloaded signatures share a qualified name.
	handled map[string]int

	// total tracks the live gap count: seeded from the initial scan and
	// corrected after every rescan, so gaps resolved by concurrent edits
	// do not linger in the [n/total] display or the remaining count.
	total int
	index int
}

// New creates a session controller reading key presses from in and writing
// prompts to out and diagnostics to errOut.
func New(cfg Config, provider llm.Provider, launcher *editor.Launcher, in io.Reader, out, errOut io.Writer) *Controller {
	return &Controller{
		cfg:      cfg,
		provider: provider,
		launcher: launcher,
		in:       bufio.NewReader(in),
		out:      out,
		errOut:   errOut,
		handled:  make(map[string]int),
	}
}

// Run walks every gap in the scan results. Files are processed in scan
// order; within a file each applied patch triggers a rescan before the next
// gap is considered. Aborting leaves already-patched files patched.
func (c *Controller) Run(ctx context.Context, results []scan.FileResult) (*Outcome, error) {
	outcome := &Outcome{}
	patched := make(map[string]bool)

	for _, r := range results {
		c.total += len(r.Gaps)
	}

	var runErr error
	for _, r := range results {
		if r.Err != nil || len(r.Gaps) == 0 {
			continue
		}
		quit, err := c.runFile(ctx, r.Path, r.Gaps, outcome, patched)
		if err != nil {
			runErr = err
			break
		}
		if quit {
			outcome.Quit = true
			break
		}
	}

	for f := range patched {
		outcome.PatchedFiles = append(outcome.PatchedFiles, f)
	}
	outcome.Remaining = c.total - outcome.Applied
	if outcome.Remaining < 0 {
		outcome.Remaining = 0
	}
	return outcome, runErr
}

// runFile resolves gaps in one file, rescanning after every applied patch.
// Returns true when the user quit the whole session.
func (c *Controller) runFile(ctx context.Context, path string, gaps []types.Gap, outcome *Outcome, patched map[string]bool) (bool, error) {
	for {
		gap, ok := c.nextGap(gaps)
		if !ok {
			return false, nil
		}

		res, text := c.resolve(ctx, gap)
		switch res {
		case Skipped:
			c.handled[gapKey(gap)]++
			outcome.Skipped++
			continue
		case Failed:
			c.handled[gapKey(gap)]++
			outcome.Failed++
			continue
		case Applied:
			applied, stale := c.apply(gap, text)
			if applied {
				outcome.Applied++
				patched[path] = true
			}
			if applied || stale {
				// Offsets of the remaining spans are invalid; rescan.
				fresh, err := scan.ScanFile(path, c.cfg.Policy)
				if err != nil {
					fmt.Fprintf(c.errOut, "rescan of %s failed: %v\n", path, err)
					return false, nil
				}
				if applied && countGaps(fresh, gap) >= countGaps(gaps, gap) {
					fmt.Fprintf(c.errOut, "warning: %s still reports no docstring after patching\n", gap.Span.QualifiedName)
				}
				// The rescan is the source of truth: fold any drift from
				// concurrent edits into the live total.
				expected := len(gaps)
				if applied {
					expected--
				}
				c.total += len(fresh) - expected
				gaps = fresh
				continue
			}
			// Apply failed for good; record and move on.
			c.handled[gapKey(gap)]++
			outcome.Failed++
			continue
		default: // quit
			return true, nil
		}
	}
}

// nextGap returns the first gap not yet handled in this run.
func (c *Controller) nextGap(gaps []types.Gap) (types.Gap, bool) {
	seen := make(map[string]int)
	for _, g := range gaps {
		key := gapKey(g)
		if seen[key] < c.handled[key] {
			seen[key]++
			continue
		}
		return g, true
	}
	return types.Gap{}, false
}

func gapKey(g types.Gap) string {
	return g.Span.FilePath + "\x00" + g.Span.QualifiedName
}

// countGaps counts gaps sharing the given gap's qualified name.
func countGaps(gaps []types.Gap, target types.Gap) int {
	n := 0
	for _, g := range gaps {
		if gapKey(g) == gapKey(target) {
			n++
		}
	}
	return n
}

// resolve runs the per-gap state machine. It returns Applied together with
// the accepted docstring text, or Skipped / Failed, or stateQuit when the
// user aborts the session.
func (c *Controller) resolve(ctx context.Context, gap types.Gap) (State, string) {
	c.index++
	c.showGap(gap)

	var suggestion types.Suggestion
	state := Pending

	for {
		switch state {
		case Pending:
			state = c.choosePending()

		case EditingManual:
			text, next := c.editManual(gap, suggestion.Text)
			if next != Reviewing {
				state = next
				continue
			}
			suggestion = types.Suggestion{Text: text, Origin: types.OriginManual}
			state = Reviewing

		case RequestingSuggestion:
			raw, err := c.provider.Suggest(ctx, llm.Request{
				QualifiedName: gap.Span.QualifiedName,
				Signature:     gap.Span.Signature,
				Source:        gap.Span.Source,
			})
			if err != nil {
				fmt.Fprintf(c.errOut, "suggestion failed: %v\n", err)
				state = c.chooseAfterFailure()
				continue
			}
			suggestion = types.Suggestion{
				Text:        llm.CleanResponse(raw),
				Origin:      types.OriginLLM,
				RawResponse: raw,
			}
			state = Reviewing

		case Reviewing:
			state = c.review(suggestion)

		case Applied:
			return Applied, suggestion.Text

		case Skipped:
			return Skipped, ""

		case Failed:
			return Failed, ""

		default: // stateQuit
			return stateQuit, ""
		}
	}
}

// choosePending asks for the initial action. The generate option is only
// offered when a provider is configured.
func (c *Controller) choosePending() State {
	msg := "(g)enerate / (m)anual / (s)kip / (q)uit > "
	valid := "gmsq"
	if c.provider == nil {
		msg = "(m)anual / (s)kip / (q)uit > "
		valid = "msq"
	}

	switch c.prompt(msg, valid) {
	case 'g':
		return RequestingSuggestion
	case 'm':
		return EditingManual
	case 's':
		return Skipped
	default:
		return stateQuit
	}
}

// chooseAfterFailure asks what to do after a provider error: retry, fall
// back to manual editing, skip, or quit. Declining to retry or fall back
// marks the gap failed.
func (c *Controller) chooseAfterFailure() State {
	switch c.prompt("(r)etry / (m)anual / (s)kip / (q)uit > ", "rmsq") {
	case 'r':
		return RequestingSuggestion
	case 'm':
		return EditingManual
	case 's':
		return Failed
	default:
		return stateQuit
	}
}

// review presents the candidate and asks for a verdict. Text that cannot
// form a valid docstring block is rejected at accept time, keeping the user
// in review to edit or skip.
func (c *Controller) review(s types.Suggestion) State {
	fmt.Fprintf(c.out, "\nCandidate docstring (%s):\n%s\n", s.Origin, indent(s.Text, "    "))

	msg := "(a)ccept / (r)egenerate / (e)dit / (s)kip / (q)uit > "
	valid := "aresq"
	if c.provider == nil {
		msg = "(a)ccept / (e)dit / (s)kip / (q)uit > "
		valid = "aesq"
	}

	switch c.prompt(msg, valid) {
	case 'a':
		if _, err := patch.Block(s.Text); err != nil {
			fmt.Fprintf(c.errOut, "cannot insert: %v\n", err)
			return Reviewing
		}
		return Applied
	case 'r':
		return RequestingSuggestion
	case 'e':
		return EditingManual
	case 's':
		return Skipped
	default:
		return stateQuit
	}
}

// editManual collects docstring text through the external editor, falling
// back to inline input when no editor is configured. The edit buffer is
// always read back, so an abnormal editor exit keeps whatever was written.
func (c *Controller) editManual(gap types.Gap, current string) (string, State) {
	initial := current
	if initial == "" {
		initial = editor.Skeleton(gap.Span.QualifiedName, gap.Span.Signature)
	}

	text, err := c.launcher.Edit(initial)
	if errors.Is(err, editor.ErrNoEditor) {
		text = c.inlineInput(current)
	} else if err != nil {
		fmt.Fprintf(c.errOut, "%v\n", err)
		if text == "" {
			return "", Pending
		}
		fmt.Fprintln(c.errOut, "keeping buffer content written before exit")
	}

	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(c.out, "Empty docstring; nothing to insert.")
		return "", Pending
	}
	return text, Reviewing
}

// inlineInput gathers multi-line input from stdin until an empty line.
func (c *Controller) inlineInput(current string) string {
	fmt.Fprintln(c.out, "Enter docstring (end with an empty line):")
	if current != "" {
		fmt.Fprintln(c.out, indent(current, "  "))
	}

	var lines []string
	for {
		line, err := c.in.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" || err != nil {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// apply hands the accepted text to the patch engine. Returns (applied,
// stale); stale means the file changed on disk and must be rescanned before
// retrying.
func (c *Controller) apply(gap types.Gap, text string) (bool, bool) {
	_, err := patch.Apply(gap, text)
	switch {
	case err == nil:
		fmt.Fprintf(c.out, "Inserted docstring for %s.\n", gap.Span.QualifiedName)
		return true, false
	case errors.Is(err, patch.ErrStaleFile):
		fmt.Fprintf(c.errOut, "%s changed on disk since it was scanned; rescanning\n", gap.Span.FilePath)
		return false, true
	case errors.Is(err, patch.ErrInvalidDocstring):
		fmt.Fprintf(c.errOut, "cannot insert: %v\n", err)
		return false, false
	default:
		fmt.Fprintf(c.errOut, "patch failed: %v\n", err)
		return false, false
	}
}

// showGap prints the gap header and code snippet.
func (c *Controller) showGap(gap types.Gap) {
	fmt.Fprintf(c.out, "\n%s\n", strings.Repeat("=", 72))
	fmt.Fprintf(c.out, "[%d/%d] %s:%d: %s (%s)\n\n",
		c.index, c.total, gap.Span.FilePath, gap.Span.Line, gap.Span.QualifiedName, gap.Span.Kind)

	snippet := gap.Span.Signature
	if c.cfg.ShowBody {
		snippet = gap.Span.Source
	}
	fmt.Fprintln(c.out, snippet)
}

// prompt reads key presses until one of valid is entered. EOF counts as
// quit ('q').
func (c *Controller) prompt(msg, valid string) byte {
	for {
		fmt.Fprint(c.out, msg)
		line, err := c.in.ReadString('\n')
		ans := strings.ToLower(strings.TrimSpace(line))
		if ans != "" && strings.IndexByte(valid, ans[0]) >= 0 {
			return ans[0]
		}
		if err != nil {
			return 'q'
		}
		fmt.Fprintf(c.out, "Please enter one of: %s.\n", strings.Join(strings.Split(valid, ""), ", "))
	}
}

// indent prefixes every line of text.
func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
