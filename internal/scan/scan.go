// Package scan matches a pattern against every line of one file.
//
// Matching runs on the raw line so indentation never changes the outcome;
// only the reported text is trimmed. Files that are not text (NUL bytes or
// invalid UTF-8) are rejected with ErrDecode rather than partially reported.
package scan

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/welbornprod/searchpat/internal/pattern"
)

// ErrDecode is returned for files that cannot be read as text.
var ErrDecode = errors.New("not a text file")

// DefaultMaxLineBytes bounds a single line when Options.MaxLineBytes is unset.
const DefaultMaxLineBytes = 10 * 1024 * 1024

// Line is one reported line of a file.
type Line struct {
	Number   int    `json:"line"` // 1-based
	Text     string `json:"text"` // trimmed for display
	Indented bool   `json:"indented,omitempty"`
}

// Result holds every reported line of one file, in file order.
// A Result is never empty; files without qualifying lines yield nil.
type Result struct {
	Path  string `json:"path"`
	Lines []Line `json:"lines"`
}

// Options configures a scan.
type Options struct {
	// Reverse reports lines that do not match.
	Reverse bool

	// MaxLength drops matching lines whose trimmed length (in runes) is at
	// least this long. Minified files otherwise flood the output with one
	// enormous line. Zero disables it. Ignored in reverse mode.
	MaxLength int

	// MaxLineBytes is the longest line the scanner accepts (0 = 10MB).
	MaxLineBytes int
}

// File scans the file at path. Returns nil, nil when no line qualifies.
func File(path string, p *pattern.Pattern, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Reader(f, path, p, opts)
}

// Reader scans r as if it were the file name.
func Reader(r io.Reader, name string, p *pattern.Pattern, opts Options) (*Result, error) {
	maxLine := opts.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	// The scanner's limit is the larger of max and cap(buf).
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)

	var lines []Line
	num := 0
	for scanner.Scan() {
		num++
		raw := scanner.Bytes()
		if bytes.IndexByte(raw, 0) >= 0 || !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: %s", ErrDecode, name)
		}
		line := string(raw)
		if p.Match(line) == opts.Reverse {
			continue
		}
		text := strings.TrimSpace(line)
		if !opts.Reverse && opts.MaxLength > 0 && utf8.RuneCountInString(text) >= opts.MaxLength {
			continue
		}
		lines = append(lines, Line{
			Number:   num,
			Text:     text,
			Indented: indented(line),
		})
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: %s: line longer than %d bytes", ErrDecode, name, maxLine)
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	if len(lines) == 0 {
		return nil, nil
	}
	return &Result{Path: name, Lines: lines}, nil
}

func indented(line string) bool {
	if line == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsSpace(r)
}
