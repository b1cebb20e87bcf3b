// Package report renders search results and the summary footer.
//
// A Reporter writes each file block with a single Write so concurrent
// searches never interleave partial blocks, even if two Reporters share a
// writer.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/welbornprod/searchpat/internal/aggregate"
	"github.com/welbornprod/searchpat/internal/highlight"
	"github.com/welbornprod/searchpat/internal/scan"
)

// ErrBrokenPipe is returned when the reader of the output went away.
var ErrBrokenPipe = errors.New("broken pipe")

// Options configures a Reporter.
type Options struct {
	Highlight *highlight.Highlighter

	// Matcher locates the span to highlight. Nil disables match
	// highlighting, which is how reverse searches are rendered.
	Matcher highlight.Matcher

	// NamesOnly prints plain file paths without lines, for use as shell
	// arguments.
	NamesOnly bool

	// Footer receives the summary. Defaults to the main writer.
	Footer io.Writer
}

// Reporter writes results to an io.Writer.
type Reporter struct {
	w    io.Writer
	opts Options
}

// New returns a Reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	if opts.Footer == nil {
		opts.Footer = w
	}
	return &Reporter{w: w, opts: opts}
}

// Stream prints one file block as soon as it is known.
func (r *Reporter) Stream(res *scan.Result) error {
	if res == nil {
		return nil
	}
	var buf bytes.Buffer
	if r.opts.NamesOnly {
		buf.WriteString(res.Path)
		buf.WriteByte('\n')
	} else {
		r.block(&buf, res)
	}
	return r.write(r.w, buf.Bytes())
}

// Final prints every result sorted by path. rep is not modified.
func (r *Reporter) Final(rep *aggregate.Report) error {
	results := slices.Clone(rep.Results)
	slices.SortFunc(results, func(a, b *scan.Result) int {
		return strings.Compare(a.Path, b.Path)
	})

	var buf bytes.Buffer
	for i, res := range results {
		if r.opts.NamesOnly {
			buf.WriteString(res.Path)
			buf.WriteByte('\n')
			continue
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		r.block(&buf, res)
	}
	return r.write(r.w, buf.Bytes())
}

// Candidate prints the path of a file that is about to be searched.
func (r *Reporter) Candidate(path string) error {
	return r.write(r.w, []byte(r.opts.Highlight.Dim(path)+"\n"))
}

// Footer prints the run summary.
func (r *Reporter) Footer(rep *aggregate.Report) error {
	return r.write(r.opts.Footer, []byte(r.opts.Highlight.Dim(Summary(rep))+"\n"))
}

// Summary describes a report in one line, e.g.
// "12 lines matched in 3 of 1,204 files (2 skipped) in 45ms".
func Summary(rep *aggregate.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s matched in %s of %s %s",
		humanize.Comma(int64(rep.TotalLines)), plural(rep.TotalLines, "line", "lines"),
		humanize.Comma(int64(rep.FilesMatched())),
		humanize.Comma(int64(rep.FilesSearched)), plural(rep.FilesSearched, "file", "files"))
	if rep.FilesSkipped > 0 {
		fmt.Fprintf(&b, " (%s skipped)", humanize.Comma(int64(rep.FilesSkipped)))
	}
	fmt.Fprintf(&b, " in %s", elapsed(rep.Elapsed))
	if rep.Cancelled {
		b.WriteString(" (cancelled)")
	}
	return b.String()
}

func (r *Reporter) block(buf *bytes.Buffer, res *scan.Result) {
	h := r.opts.Highlight
	buf.WriteString(h.Path(res.Path))
	buf.WriteByte('\n')

	width := len(strconv.Itoa(res.Lines[len(res.Lines)-1].Number))
	for _, l := range res.Lines {
		text := l.Text
		if r.opts.Matcher != nil {
			text = h.Line(text, r.opts.Matcher)
		}
		buf.WriteString("  ")
		buf.WriteString(h.Number(fmt.Sprintf("%*d", width, l.Number)))
		buf.WriteString(": ")
		if l.Indented {
			buf.WriteString("  ")
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
}

func (r *Reporter) write(w io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if _, err := w.Write(p); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return fmt.Errorf("%w: %w", ErrBrokenPipe, err)
		}
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func elapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
