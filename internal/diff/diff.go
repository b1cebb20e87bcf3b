// Package diff compares the listings of two recorded search runs line by
// line, showing which matches appeared or disappeared between them.
package diff

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines unchanged lines are kept either side of a collapsed run.
const contextLines = 3

// Result holds diff output.
type Result struct {
	Old     string `json:"old"`     // old label
	New     string `json:"new"`     // new label
	Diff    string `json:"diff"`    // plain diff text
	Added   int    `json:"added"`   // lines only in new
	Removed int    `json:"removed"` // lines only in old
}

// Changed reports whether the two sides differ.
func (r Result) Changed() bool { return r.Added > 0 || r.Removed > 0 }

// Compute returns a line-level diff between old and new listings.
func Compute(oldText, newText, oldLabel, newLabel string) Result {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	d := dmp.DiffMain(a, b, false)
	d = dmp.DiffCharsToLines(d, lines)

	r := Result{Old: oldLabel, New: newLabel}
	r.Diff, r.Added, r.Removed = format(d)
	return r
}

var prefixes = map[diffmatchpatch.Operation]string{
	diffmatchpatch.DiffDelete: "- ",
	diffmatchpatch.DiffInsert: "+ ",
	diffmatchpatch.DiffEqual:  "  ",
}

// format renders diffs one prefixed line at a time, counting changed lines.
func format(diffs []diffmatchpatch.Diff) (out string, added, removed int) {
	var b strings.Builder
	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			removed += len(lines)
		case diffmatchpatch.DiffInsert:
			added += len(lines)
		case diffmatchpatch.DiffEqual:
			lines = collapse(lines)
		}
		for _, l := range lines {
			b.WriteString(prefixes[d.Type])
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String(), added, removed
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// collapse keeps contextLines at both ends of an unchanged run.
func collapse(lines []string) []string {
	if len(lines) <= 2*contextLines {
		return lines
	}
	return slices.Concat(lines[:contextLines], []string{"..."}, lines[len(lines)-contextLines:])
}

// Colourise colours removed lines red and added lines green.
func Colourise(d string) string {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	red.EnableColor()
	green.EnableColor()

	var b strings.Builder
	for line := range strings.Lines(d) {
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "):
			b.WriteString(red.Sprint(line) + "\n")
		case strings.HasPrefix(line, "+ "):
			b.WriteString(green.Sprint(line) + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Format returns the full diff with header.
func (r Result) Format(colour bool) string {
	header := fmt.Sprintf("--- %s\n+++ %s\n", r.Old, r.New)
	if colour {
		return header + Colourise(r.Diff)
	}
	return header + r.Diff
}

// Write prints the formatted diff to w.
func (r Result) Write(w io.Writer, colour bool) error {
	_, err := io.WriteString(w, r.Format(colour))
	return err
}

// ParseRange parses a run range like "3:5" into two ids.
func ParseRange(s string) (id1, id2 int64, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid run range %q (expected id1:id2)", s)
	}
	if parts[0] == "" || parts[1] == "" {
		return 0, 0, fmt.Errorf("invalid run range %q: both ids required", s)
	}
	id1, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid first run id: %w", err)
	}
	id2, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid second run id: %w", err)
	}
	if id1 < 1 || id2 < 1 {
		return 0, 0, fmt.Errorf("invalid run range %q: ids must be >= 1", s)
	}
	return id1, id2, nil
}
