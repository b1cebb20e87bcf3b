// Package search runs one complete search: enumerate, scan concurrently,
// aggregate. It is the single entry point shared by the command line and the
// MCP server.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/welbornprod/searchpat/internal/aggregate"
	"github.com/welbornprod/searchpat/internal/dispatch"
	"github.com/welbornprod/searchpat/internal/pattern"
	"github.com/welbornprod/searchpat/internal/scan"
	"github.com/welbornprod/searchpat/internal/walk"
)

// ErrNoTargets is returned when none of the requested targets exist.
var ErrNoTargets = errors.New("no valid targets")

// Options configures a search.
type Options struct {
	Pattern *pattern.Pattern
	Targets []string // defaults to "."
	Filter  walk.Filter

	Reverse      bool
	MaxLength    int
	MaxLineBytes int
	Workers      int

	// Preview, when set, is called for every enumerated file before any
	// scanning starts. The enumeration is collected up front to do this.
	Preview func(walk.Target) error

	Logger *log.Logger
}

// Sink receives results as they arrive. Calls are never concurrent.
type Sink interface {
	// Found is called once per file with at least one reported line.
	// Returning an error stops the search.
	Found(*scan.Result) error

	// Progress is called after every counted file.
	Progress(searched, matched int)
}

// Discard is a Sink that ignores everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Found(*scan.Result) error { return nil }
func (discard) Progress(int, int)        {}

// Run searches opts.Targets and returns the sealed report. The report is
// returned even when err is non-nil, holding whatever was counted before
// cancellation or a sink failure; err then wraps dispatch.ErrCancelled or
// the sink's error.
func Run(ctx context.Context, opts Options, sink Sink) (*aggregate.Report, error) {
	if opts.Pattern == nil {
		return nil, fmt.Errorf("%w: no pattern", pattern.ErrPattern)
	}
	if sink == nil {
		sink = Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := opts.Filter.Validate(); err != nil {
		return nil, err
	}

	targets := opts.Targets
	if len(targets) == 0 {
		targets = []string{"."}
	}
	valid, errs := walk.Check(targets)
	for _, err := range errs {
		logger.Warn("skipping target", "err", err)
	}
	if len(valid) == 0 {
		return nil, ErrNoTargets
	}

	start := time.Now()
	seq := walk.Enumerate(ctx, valid, opts.Filter)
	if opts.Preview != nil {
		var err error
		if seq, err = collect(seq, opts.Preview); err != nil {
			return nil, err
		}
	}

	scanOpts := scan.Options{
		Reverse:      opts.Reverse,
		MaxLength:    opts.MaxLength,
		MaxLineBytes: opts.MaxLineBytes,
	}
	agg := aggregate.New()
	matched := 0

	err := dispatch.Run(ctx, seq, dispatch.Options{Workers: opts.Workers},
		func(t walk.Target) (*scan.Result, error) {
			return scan.File(t.Path, opts.Pattern, scanOpts)
		},
		func(o dispatch.Outcome) error {
			switch {
			case o.State == dispatch.Skipped && errors.Is(o.Err, walk.ErrFileAccess):
				logger.Warn("skipping unreadable path", "err", o.Err)
				return nil
			case o.State == dispatch.Skipped:
				logger.Debug("skipped", "path", o.Target.Path, "err", o.Err)
				if err := agg.Skip(); err != nil {
					return err
				}
			default:
				if err := agg.Record(o.Result); err != nil {
					return err
				}
			}
			if o.State == dispatch.Matched {
				matched++
				if err := sink.Found(o.Result); err != nil {
					return err
				}
			}
			sink.Progress(agg.FilesSearched(), matched)
			return nil
		})

	rep, sealErr := agg.Seal(time.Since(start), errors.Is(err, dispatch.ErrCancelled))
	if sealErr != nil {
		return nil, sealErr
	}
	logger.Debug("search finished",
		"searched", rep.FilesSearched, "matched", rep.FilesMatched(),
		"skipped", rep.FilesSkipped, "elapsed", rep.Elapsed)
	return rep, err
}

// collect drains seq, calling preview for each target, and returns a
// sequence replaying it. Enumeration errors are replayed in place.
func collect(seq iter.Seq2[walk.Target, error], preview func(walk.Target) error) (iter.Seq2[walk.Target, error], error) {
	type item struct {
		t   walk.Target
		err error
	}
	var items []item
	for t, err := range seq {
		if err == nil {
			if perr := preview(t); perr != nil {
				return nil, perr
			}
		}
		items = append(items, item{t, err})
	}
	return func(yield func(walk.Target, error) bool) {
		for _, it := range items {
			if !yield(it.t, it.err) {
				return
			}
		}
	}, nil
}
