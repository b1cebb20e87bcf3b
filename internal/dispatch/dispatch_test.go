package dispatch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welbornprod/searchpat/internal/scan"
	"github.com/welbornprod/searchpat/internal/walk"
)

// targets yields n synthetic targets named f000, f001, ...
func targets(n int) iter.Seq2[walk.Target, error] {
	return func(yield func(walk.Target, error) bool) {
		for i := range n {
			if !yield(walk.NewTarget(fmt.Sprintf("f%03d", i), false), nil) {
				return
			}
		}
	}
}

// evenMatches reports a match for even-numbered targets.
func evenMatches(t walk.Target) (*scan.Result, error) {
	var i int
	fmt.Sscanf(t.Path, "f%d", &i)
	if i%2 == 0 {
		return &scan.Result{Path: t.Path, Lines: []scan.Line{{Number: 1, Text: "x"}}}, nil
	}
	return nil, nil
}

func TestRun_PoolSizesAgree(t *testing.T) {
	for _, workers := range []int{1, 4, Unbounded} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var delivered, matched int
			var paths []string
			err := Run(context.Background(), targets(101), Options{Workers: workers}, evenMatches,
				func(o Outcome) error {
					delivered++
					if o.State == Matched {
						matched++
						paths = append(paths, o.Result.Path)
					}
					return nil
				})
			require.NoError(t, err)
			assert.Equal(t, 101, delivered)
			assert.Equal(t, 51, matched)
			assert.True(t, sort.StringsAreSorted(paths) || workers != 1, "single worker preserves order")
		})
	}
}

func TestRun_DeliverIsSingleWriter(t *testing.T) {
	var active, maxActive int32
	err := Run(context.Background(), targets(200), Options{Workers: 8}, evenMatches,
		func(Outcome) error {
			n := atomic.AddInt32(&active, 1)
			if n > atomic.LoadInt32(&maxActive) {
				atomic.StoreInt32(&maxActive, n)
			}
			time.Sleep(time.Microsecond)
			atomic.AddInt32(&active, -1)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, int32(1), maxActive)
}

func TestRun_States(t *testing.T) {
	boom := errors.New("boom")
	scanFn := func(t walk.Target) (*scan.Result, error) {
		switch t.Path {
		case "f000":
			return &scan.Result{Path: t.Path, Lines: []scan.Line{{Number: 1}}}, nil
		case "f001":
			return nil, boom
		default:
			return nil, nil
		}
	}

	got := map[string]State{}
	err := Run(context.Background(), targets(3), Options{Workers: 2}, scanFn, func(o Outcome) error {
		got[o.Target.Path] = o.State
		if o.State == Skipped {
			assert.ErrorIs(t, o.Err, boom)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]State{"f000": Matched, "f001": Skipped, "f002": NoMatch}, got)
	assert.Equal(t, "no-match", NoMatch.String())
}

func TestRun_EnumerationErrors(t *testing.T) {
	walkErr := fmt.Errorf("%w x", walk.ErrFileAccess)
	seq := func(yield func(walk.Target, error) bool) {
		if !yield(walk.Target{Path: "bad"}, walkErr) {
			return
		}
		yield(walk.NewTarget("f000", false), nil)
	}

	var scanned int32
	var outcomes []Outcome
	err := Run(context.Background(), seq, Options{Workers: 1},
		func(t walk.Target) (*scan.Result, error) {
			atomic.AddInt32(&scanned, 1)
			return evenMatches(t)
		},
		func(o Outcome) error {
			outcomes = append(outcomes, o)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, int32(1), scanned, "enumeration errors are not scanned")
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		if o.Target.Path == "bad" {
			assert.Equal(t, Skipped, o.State)
			assert.ErrorIs(t, o.Err, walk.ErrFileAccess)
		}
	}
}

func TestRun_DeliverErrorStops(t *testing.T) {
	pipe := errors.New("broken pipe")
	var delivered int
	err := Run(context.Background(), targets(1000), Options{Workers: 2}, evenMatches,
		func(Outcome) error {
			delivered++
			if delivered == 3 {
				return pipe
			}
			return nil
		})
	assert.ErrorIs(t, err, pipe)
	assert.Equal(t, 3, delivered, "no deliveries after the first error")
}

func TestRun_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var delivered int
	err := Run(ctx, targets(10000), Options{Workers: 2}, evenMatches,
		func(Outcome) error {
			delivered++
			if delivered == 5 {
				cancel()
			}
			return nil
		})
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, delivered, 5)
	assert.Less(t, delivered, 10000)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var delivered int
	err := Run(ctx, targets(100), Options{Workers: Unbounded}, evenMatches,
		func(Outcome) error {
			delivered++
			return nil
		})
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, delivered)
}
