// Package highlight decorates matched text for terminal display.
//
// A disabled Highlighter returns its input unchanged, so callers never branch
// on colour support themselves. Decoration only ever wraps text; it has no
// influence on which lines are reported.
package highlight

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Highlighter wraps matches, paths and line numbers in colour sequences.
type Highlighter struct {
	enabled bool
	match   *color.Color
	path    *color.Color
	number  *color.Color
	dim     *color.Color
}

// New returns a Highlighter. When enabled is false every method is the
// identity function.
func New(enabled bool) *Highlighter {
	h := &Highlighter{
		enabled: enabled,
		match:   color.New(color.FgRed, color.Bold),
		path:    color.New(color.FgBlue, color.Bold),
		number:  color.New(color.FgCyan),
		dim:     color.New(color.Faint),
	}
	// Colour decisions are made here, not by fatih/color's global TTY check.
	for _, c := range []*color.Color{h.match, h.path, h.number, h.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return h
}

// Enabled reports whether decoration is applied.
func (h *Highlighter) Enabled() bool { return h != nil && h.enabled }

// Matcher locates the first span to highlight in a line.
type Matcher interface {
	Find(line string) (start, end int, ok bool)
}

// Line wraps the first span of line matched by m. The input is returned
// unchanged when disabled or when nothing matches.
func (h *Highlighter) Line(line string, m Matcher) string {
	if !h.Enabled() {
		return line
	}
	start, end, ok := m.Find(line)
	if !ok || start == end {
		return line
	}
	return line[:start] + h.match.Sprint(line[start:end]) + line[end:]
}

// Path colours a file path header.
func (h *Highlighter) Path(s string) string {
	if !h.Enabled() {
		return s
	}
	return h.path.Sprint(s)
}

// Number colours a line number column.
func (h *Highlighter) Number(s string) string {
	if !h.Enabled() {
		return s
	}
	return h.number.Sprint(s)
}

// Dim fades secondary text such as the summary footer.
func (h *Highlighter) Dim(s string) string {
	if !h.Enabled() {
		return s
	}
	return h.dim.Sprint(s)
}

// Auto decides whether colour should be used for f: never when disabled is
// set or NO_COLOR is present, otherwise only when f is a terminal.
func Auto(f *os.File, disabled bool) bool {
	if disabled {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
