package cmd

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welbornprod/searchpat/internal/aggregate"
	"github.com/welbornprod/searchpat/internal/dispatch"
	"github.com/welbornprod/searchpat/internal/history"
	"github.com/welbornprod/searchpat/internal/pattern"
	"github.com/welbornprod/searchpat/internal/report"
	"github.com/welbornprod/searchpat/internal/scan"
	"github.com/welbornprod/searchpat/internal/search"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		silent bool
	}{
		{"success", nil, 0, false},
		{"no match", errNoMatch, 1, true},
		{"pattern", fmt.Errorf("%w: bad", pattern.ErrPattern), 1, false},
		{"no targets", search.ErrNoTargets, 1, false},
		{"interrupted", fmt.Errorf("search: %w", dispatch.ErrCancelled), 130, true},
		{"broken pipe", fmt.Errorf("%w: %w", report.ErrBrokenPipe, syscall.EPIPE), 141, true},
		{"raw epipe", fmt.Errorf("write: %w", syscall.EPIPE), 141, true},
		{"other", errors.New("boom"), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, exitCode(tt.err))
			if tt.err != nil {
				assert.Equal(t, tt.silent, silent(tt.err))
			}
		})
	}
}

func TestSplitArgs(t *testing.T) {
	t.Cleanup(func() { regexps = nil })

	terms, targets, err := splitArgs([]string{"foo", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, terms)
	assert.Equal(t, []string{"a", "b"}, targets)

	_, _, err = splitArgs(nil)
	assert.ErrorIs(t, err, pattern.ErrPattern)

	regexps = []string{"x", "y"}
	terms, targets, err = splitArgs([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, terms)
	assert.Equal(t, []string{"a"}, targets)
}

func TestNewJSONReport(t *testing.T) {
	p, err := pattern.Compile([]string{"foo"}, true)
	require.NoError(t, err)

	rep := &aggregate.Report{
		Results: []*scan.Result{
			{Path: "z.go", Lines: []scan.Line{{Number: 1, Text: "foo"}}},
			{Path: "a.go", Lines: []scan.Line{{Number: 2, Text: "foo"}}},
		},
		FilesSearched: 5,
		TotalLines:    2,
	}
	out := newJSONReport(p, rep)
	assert.Equal(t, "a.go", out.Results[0].Path)
	assert.Equal(t, "z.go", rep.Results[0].Path, "report must not be reordered")
	assert.Equal(t, 2, out.FilesMatched)

	empty := newJSONReport(p, &aggregate.Report{})
	assert.NotNil(t, empty.Results)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "3 lines in 2/9 files", outcome(history.Run{Lines: 3, FilesMatched: 2, FilesSearched: 9}))
	assert.Equal(t, "0 lines in 0/4 files (cancelled)", outcome(history.Run{FilesSearched: 4, Cancelled: true}))
	assert.Equal(t, "error: invalid pattern", outcome(history.Run{Error: "invalid pattern"}))
}

func TestParseRunID(t *testing.T) {
	id, err := parseRunID("12")
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)

	for _, s := range []string{"0", "-1", "x", ""} {
		_, err := parseRunID(s)
		assert.Error(t, err, s)
	}
}
