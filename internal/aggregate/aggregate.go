// Package aggregate collects per-file results into the report for one run.
//
// The Aggregator is the only shared mutable state of a search. The
// dispatcher already funnels results through a single goroutine, but every
// method still takes the lock so the counters stay exact if that changes.
package aggregate

import (
	"errors"
	"sync"
	"time"

	"github.com/welbornprod/searchpat/internal/scan"
)

// ErrClosed is returned when Record or Skip is called after Seal. It always
// indicates a sequencing bug in the caller.
var ErrClosed = errors.New("aggregate already sealed")

// Report is the sealed outcome of one search. It must not be modified.
type Report struct {
	Results       []*scan.Result `json:"results"`
	FilesSearched int            `json:"files_searched"`
	FilesSkipped  int            `json:"files_skipped"`
	TotalLines    int            `json:"lines_matched"`
	Elapsed       time.Duration  `json:"elapsed_ns"`
	Cancelled     bool           `json:"cancelled,omitempty"`
}

// FilesMatched returns the number of files with at least one reported line.
func (r *Report) FilesMatched() int { return len(r.Results) }

// Found reports whether any line was reported.
func (r *Report) Found() bool { return len(r.Results) > 0 }

// Aggregator accumulates results until sealed.
type Aggregator struct {
	mu       sync.Mutex
	results  []*scan.Result
	searched int
	skipped  int
	lines    int
	sealed   bool
}

// New returns an open Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Record counts one searched file and keeps r when it is non-nil.
func (a *Aggregator) Record(r *scan.Result) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed {
		return ErrClosed
	}
	a.searched++
	if r != nil && len(r.Lines) > 0 {
		a.results = append(a.results, r)
		a.lines += len(r.Lines)
	}
	return nil
}

// Skip counts a file that was enumerated but could not be scanned (binary,
// unreadable). Skipped files still count as searched.
func (a *Aggregator) Skip() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed {
		return ErrClosed
	}
	a.searched++
	a.skipped++
	return nil
}

// TotalLines returns the number of lines reported so far.
func (a *Aggregator) TotalLines() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lines
}

// FilesSearched returns the number of files counted so far.
func (a *Aggregator) FilesSearched() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.searched
}

// Seal closes the Aggregator and returns the final Report. Calling Seal
// twice returns ErrClosed.
func (a *Aggregator) Seal(elapsed time.Duration, cancelled bool) (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed {
		return nil, ErrClosed
	}
	a.sealed = true
	results := make([]*scan.Result, len(a.results))
	copy(results, a.results)
	return &Report{
		Results:       results,
		FilesSearched: a.searched,
		FilesSkipped:  a.skipped,
		TotalLines:    a.lines,
		Elapsed:       elapsed,
		Cancelled:     cancelled,
	}, nil
}
