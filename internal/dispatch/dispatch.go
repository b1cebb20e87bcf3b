// Package dispatch scans many files concurrently and hands every outcome to
// a single consumer.
//
// Workers each own one file at a time and send the finished outcome down one
// channel. The consumer callback only ever runs on the goroutine that called
// Run, so anything it touches (the aggregate, stdout) has exactly one writer
// and a file's output block is never split by another's.
//
// Cancellation stops new files from being handed out. Files already being
// scanned run to completion and their outcomes are still delivered, so the
// partial report stays consistent.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/welbornprod/searchpat/internal/scan"
	"github.com/welbornprod/searchpat/internal/walk"
)

// ErrCancelled is returned when the context was cancelled before every
// target was dispatched.
var ErrCancelled = errors.New("search cancelled")

// Unbounded as Options.Workers starts one goroutine per file.
const Unbounded = 0

// State is the lifecycle position of one file.
type State int

const (
	Pending State = iota
	Scanning
	Matched
	NoMatch
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Scanning:
		return "scanning"
	case Matched:
		return "matched"
	case NoMatch:
		return "no-match"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the finished scan of one target.
type Outcome struct {
	Target walk.Target
	Result *scan.Result // nil unless State is Matched
	Err    error        // set when State is Skipped
	State  State
}

// ScanFunc scans one target.
type ScanFunc func(walk.Target) (*scan.Result, error)

// Options configures Run.
type Options struct {
	// Workers is the pool size. Unbounded (0) starts a goroutine per file.
	Workers int
}

// Run scans every target yielded by targets using scanFn, calling deliver
// once per outcome. Enumeration errors are delivered as Skipped outcomes
// without a scan.
//
// If deliver returns an error, dispatching stops, remaining outcomes are
// drained without delivery and that error is returned. If ctx is cancelled,
// dispatching stops, in-flight outcomes are delivered and the returned
// error wraps ErrCancelled.
func Run(ctx context.Context, targets iter.Seq2[walk.Target, error], opts Options, scanFn ScanFunc, deliver func(Outcome) error) error {
	if opts.Workers < 0 {
		opts.Workers = Unbounded
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	buf := 64
	if opts.Workers > 0 {
		buf = opts.Workers * 2
	}
	outcomes := make(chan Outcome, buf)

	var wg sync.WaitGroup
	var jobs chan walk.Target
	if opts.Workers > 0 {
		jobs = make(chan walk.Target)
		for range opts.Workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for t := range jobs {
					outcomes <- scanOne(t, scanFn)
				}
			}()
		}
	}

	go func() {
		defer func() {
			if jobs != nil {
				close(jobs)
			}
			wg.Wait()
			close(outcomes)
		}()
		for t, err := range targets {
			if runCtx.Err() != nil {
				return
			}
			if err != nil {
				outcomes <- Outcome{Target: t, Err: err, State: Skipped}
				continue
			}
			if jobs == nil {
				wg.Add(1)
				go func() {
					defer wg.Done()
					outcomes <- scanOne(t, scanFn)
				}()
				continue
			}
			select {
			case jobs <- t:
			case <-runCtx.Done():
				return
			}
		}
	}()

	var deliverErr error
	for o := range outcomes {
		if deliverErr != nil {
			continue
		}
		if err := deliver(o); err != nil {
			deliverErr = err
			cancel()
		}
	}

	if deliverErr != nil {
		return deliverErr
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

func scanOne(t walk.Target, scanFn ScanFunc) Outcome {
	res, err := scanFn(t)
	switch {
	case err != nil:
		return Outcome{Target: t, Err: err, State: Skipped}
	case res == nil:
		return Outcome{Target: t, State: NoMatch}
	default:
		return Outcome{Target: t, Result: res, State: Matched}
	}
}
