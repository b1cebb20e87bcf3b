// tools_search.go implements the search tool. Results come back as one JSON
// document sorted by path. There is no streaming, and the listing is capped
// so a broad pattern cannot flood the client's context.

package mcp

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/welbornprod/searchpat/internal/aggregate"
	"github.com/welbornprod/searchpat/internal/dispatch"
	"github.com/welbornprod/searchpat/internal/history"
	"github.com/welbornprod/searchpat/internal/pattern"
	"github.com/welbornprod/searchpat/internal/report"
	"github.com/welbornprod/searchpat/internal/scan"
	"github.com/welbornprod/searchpat/internal/search"
)

const defaultLimit = 100

type searchResult struct {
	Results       []*scan.Result `json:"results"`
	FilesSearched int            `json:"files_searched"`
	FilesMatched  int            `json:"files_matched"`
	FilesSkipped  int            `json:"files_skipped"`
	LinesMatched  int            `json:"lines_matched"`
	Truncated     bool           `json:"truncated,omitempty"`
	Cancelled     bool           `json:"cancelled,omitempty"`
	Summary       string         `json:"summary"`
}

// search handles searchpat_search tool calls.
func (h *handlers) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	first, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError("pattern is required"), nil //nolint:nilerr
	}
	terms := append([]string{first}, getStrings(req, "patterns")...)
	paths := getStrings(req, "paths")

	p, err := pattern.Compile(terms, !getBool(req, "case_sensitive", false))
	if err != nil {
		h.record(terms, paths, nil, err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	filter, err := search.Selection{
		All:   getBool(req, "all", false),
		Types: getString(req, "types", ""),
	}.Filter(h.cfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := search.Run(ctx, search.Options{
		Pattern:      p,
		Targets:      paths,
		Filter:       filter,
		Reverse:      getBool(req, "reverse", false),
		MaxLength:    getInt(req, "max_length", h.cfg.MaxLength()),
		MaxLineBytes: h.cfg.MaxLineLength(),
		Workers:      h.cfg.Workers(),
		Logger:       h.logger,
	}, nil)
	h.record(terms, paths, rep, err)
	if rep == nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil && !errors.Is(err, dispatch.ErrCancelled) {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := slices.Clone(rep.Results)
	slices.SortFunc(results, func(a, b *scan.Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	out := searchResult{
		Results:       results,
		FilesSearched: rep.FilesSearched,
		FilesMatched:  rep.FilesMatched(),
		FilesSkipped:  rep.FilesSkipped,
		LinesMatched:  rep.TotalLines,
		Cancelled:     rep.Cancelled,
		Summary:       report.Summary(rep),
	}
	if limit := getInt(req, "limit", defaultLimit); limit > 0 && len(out.Results) > limit {
		out.Results = out.Results[:limit]
		out.Truncated = true
	}
	return jsonResult(out)
}

func (h *handlers) record(terms, paths []string, rep *aggregate.Report, err error) {
	if !h.history {
		return
	}
	if werr := history.Event("mcp", strings.Join(terms, "|")).Targets(paths).Result(rep).Write(err); werr != nil {
		slog.Warn("history not recorded", "err", werr)
	}
}
