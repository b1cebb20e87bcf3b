// Package progress shows a live file count while a buffered search runs.
// Output goes to stderr to keep stdout clean for piping, and nothing is
// written unless stderr is a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// interval limits redraws; a fast search would otherwise spend its time
// repainting the line.
const interval = 100 * time.Millisecond

// Counter tracks and displays search progress.
type Counter struct {
	w     io.Writer
	label string
	isTTY bool
	now   func() time.Time
	last  time.Time
	width int
}

// New creates a counter that writes to stderr.
func New(label string) *Counter {
	return NewWriter(os.Stderr, label, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewWriter creates a counter on w. When tty is false every method is a
// no-op.
func NewWriter(w io.Writer, label string, tty bool) *Counter {
	return &Counter{w: w, label: label, isTTY: tty, now: time.Now}
}

// Update redraws the line with the current counts, at most once per
// interval.
func (c *Counter) Update(searched, matched int) {
	if !c.isTTY {
		return
	}
	now := c.now()
	if !c.last.IsZero() && now.Sub(c.last) < interval {
		return
	}
	c.last = now
	line := fmt.Sprintf("%s... %s files, %s matched",
		c.label, humanize.Comma(int64(searched)), humanize.Comma(int64(matched)))
	pad := max(c.width-len(line), 0)
	c.width = len(line)
	fmt.Fprintf(c.w, "\r%s%s", line, strings.Repeat(" ", pad))
}

// Done clears the progress line to make way for final output.
func (c *Counter) Done() {
	if !c.isTTY || c.width == 0 {
		return
	}
	fmt.Fprintf(c.w, "\r%s\r", strings.Repeat(" ", c.width))
	c.width = 0
}
