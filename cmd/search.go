/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

// search.go runs the root command: it turns flags and config into search
// options, picks streaming or buffered output and records the run.
//
// Streaming prints each file block as soon as its scan finishes, in
// completion order. Buffered output (--sort, --names, -o json, or a single
// file target) shows a progress line on stderr instead and prints
// everything sorted by path at the end.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/welbornprod/searchpat/internal/aggregate"
	"github.com/welbornprod/searchpat/internal/highlight"
	"github.com/welbornprod/searchpat/internal/history"
	"github.com/welbornprod/searchpat/internal/pattern"
	"github.com/welbornprod/searchpat/internal/progress"
	"github.com/welbornprod/searchpat/internal/report"
	"github.com/welbornprod/searchpat/internal/scan"
	"github.com/welbornprod/searchpat/internal/search"
	"github.com/welbornprod/searchpat/internal/walk"
)

var errMissingPattern = fmt.Errorf("%w: missing pattern (see searchpat --help)", pattern.ErrPattern)

// unrecorded flags change presentation only and are left out of history.
var unrecorded = map[string]bool{
	"output":     true,
	"debug":      true,
	"regexp":     true,
	"no-color":   true,
	"no-history": true,
	"print-all":  true,
	"sort":       true,
}

type jsonReport struct {
	Pattern       string         `json:"pattern"`
	Results       []*scan.Result `json:"results"`
	FilesSearched int            `json:"files_searched"`
	FilesMatched  int            `json:"files_matched"`
	FilesSkipped  int            `json:"files_skipped"`
	LinesMatched  int            `json:"lines_matched"`
	ElapsedMS     int64          `json:"elapsed_ms"`
	Cancelled     bool           `json:"cancelled,omitempty"`
}

// streamSink prints every result the moment it arrives.
type streamSink struct{ r *report.Reporter }

func (s streamSink) Found(res *scan.Result) error { return s.r.Stream(res) }
func (streamSink) Progress(int, int)              {}

// progressSink holds results back and keeps a running count on stderr.
type progressSink struct{ c *progress.Counter }

func (progressSink) Found(*scan.Result) error         { return nil }
func (s progressSink) Progress(searched, matched int) { s.c.Update(searched, matched) }

func runSearch(c *cobra.Command, args []string) error {
	terms, targets, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		targets = []string{"."}
	}
	event := history.Event("cli", strings.Join(terms, "|")).Targets(targets)

	p, err := pattern.Compile(terms, !caseSensitive)
	if err != nil {
		recordSearch(c, event, nil, err)
		return err
	}

	filter, err := search.Selection{
		All:     all,
		Types:   types,
		Exclude: exclude,
		Hidden:  hidden,
	}.Filter(cfg)
	if err != nil {
		return err
	}

	var matcher highlight.Matcher = p
	if reverse {
		matcher = nil
	}
	footer := out
	if namesOnly {
		footer = errOut
	}
	rep := report.New(out, report.Options{
		Highlight: highlight.New(useColour()),
		Matcher:   matcher,
		NamesOnly: namesOnly,
		Footer:    footer,
	})

	opts := search.Options{
		Pattern:      p,
		Targets:      targets,
		Filter:       filter,
		Reverse:      reverse,
		MaxLength:    cfg.MaxLength(),
		MaxLineBytes: cfg.MaxLineLength(),
		Workers:      cfg.Workers(),
		Logger:       logger,
	}
	if c.Flags().Changed("max-length") {
		opts.MaxLength = maxLength
	}
	if c.Flags().Changed("workers") {
		opts.Workers = workers
	}
	if printAll && !JSON() {
		opts.Preview = func(t walk.Target) error { return rep.Candidate(t.Path) }
	}

	buffered := bufferedOutput(targets)
	var sink search.Sink = streamSink{rep}
	var counter *progress.Counter
	if buffered {
		counter = progress.New("Searching")
		sink = progressSink{counter}
	}

	logger.Debug("searching", "pattern", p.String(), "targets", targets,
		"workers", opts.Workers, "buffered", buffered, "extensions", filter.Extensions)

	result, err := search.Run(c.Context(), opts, sink)
	if counter != nil {
		counter.Done()
	}
	recordSearch(c, event, result, err)
	if result == nil || errors.Is(err, report.ErrBrokenPipe) {
		return err
	}

	if werr := finish(rep, p, result, buffered); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	if !result.Found() {
		return errNoMatch
	}
	return nil
}

// splitArgs separates patterns from targets. With -e every positional
// argument is a target.
func splitArgs(args []string) (terms, targets []string, err error) {
	if len(regexps) > 0 {
		return regexps, args, nil
	}
	if len(args) == 0 {
		return nil, nil, errMissingPattern
	}
	return args[:1], args[1:], nil
}

func bufferedOutput(targets []string) bool {
	if JSON() || sortOutput || namesOnly {
		return true
	}
	return len(targets) == 1 && walk.IsFile(targets[0])
}

// finish prints whatever was held back, then the summary.
func finish(rep *report.Reporter, p *pattern.Pattern, result *aggregate.Report, buffered bool) error {
	if JSON() {
		return PrintJSON(newJSONReport(p, result))
	}
	if buffered {
		if err := rep.Final(result); err != nil {
			return err
		}
	}
	return rep.Footer(result)
}

func newJSONReport(p *pattern.Pattern, rep *aggregate.Report) jsonReport {
	results := slices.Clone(rep.Results)
	slices.SortFunc(results, func(a, b *scan.Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	if results == nil {
		results = []*scan.Result{}
	}
	return jsonReport{
		Pattern:       p.String(),
		Results:       results,
		FilesSearched: rep.FilesSearched,
		FilesMatched:  rep.FilesMatched(),
		FilesSkipped:  rep.FilesSkipped,
		LinesMatched:  rep.TotalLines,
		ElapsedMS:     rep.Elapsed.Milliseconds(),
		Cancelled:     rep.Cancelled,
	}
}

// useColour resolves --no-color, the color config key and the terminal.
func useColour() bool {
	if JSON() || noColor {
		return false
	}
	switch cfg.ColorMode() {
	case "never":
		return false
	case "always":
		return true
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return highlight.Auto(f, false)
}

// recordSearch writes the run to history unless disabled. Failures only
// warn.
func recordSearch(c *cobra.Command, event *history.Builder, result *aggregate.Report, err error) {
	if noHistory || !cfg.HistoryEnabled() {
		return
	}
	if herr := openHistory(); herr != nil {
		logger.Warn("history unavailable", "err", herr)
		return
	}
	c.Flags().Visit(func(f *pflag.Flag) {
		if !unrecorded[f.Name] {
			event.Detail(f.Name, f.Value.String())
		}
	})
	if werr := event.Result(result).Write(err); werr != nil {
		logger.Warn("history not recorded", "err", werr)
	}
}

// openHistory opens the history database scoped to the working directory.
func openHistory() error {
	if err := history.Open(); err != nil {
		return err
	}
	if wd, err := os.Getwd(); err == nil {
		history.SetProject(wd)
	}
	return nil
}
