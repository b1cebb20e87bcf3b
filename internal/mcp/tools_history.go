// tools_history.go exposes the run history so a client can revisit earlier
// searches and see what changed between two of them.

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/welbornprod/searchpat/internal/diff"
	"github.com/welbornprod/searchpat/internal/history"
)

// historyList handles searchpat_history tool calls.
func (h *handlers) historyList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	if id := getInt(req, "id", 0); id > 0 {
		run, err := history.Get(int64(id))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(run)
	}

	runs, err := history.Recent(getInt(req, "limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if runs == nil {
		runs = []history.Run{}
	}
	return jsonResult(runs)
}

// historyDiff handles searchpat_diff tool calls.
func (h *handlers) historyDiff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	from, to := getInt(req, "from", 0), getInt(req, "to", 0)
	if from < 1 || to < 1 {
		return mcp.NewToolResultError("from and to are required run ids"), nil
	}

	r, err := diffRuns(int64(from), int64(to))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"old":     r.Old,
		"new":     r.New,
		"added":   r.Added,
		"removed": r.Removed,
		"diff":    r.Format(false),
	})
}

func diffRuns(from, to int64) (diff.Result, error) {
	a, err := history.Get(from)
	if err != nil {
		return diff.Result{}, err
	}
	b, err := history.Get(to)
	if err != nil {
		return diff.Result{}, err
	}
	return diff.Compute(a.Listing, b.Listing,
		fmt.Sprintf("run %d (%s)", a.ID, a.Pattern),
		fmt.Sprintf("run %d (%s)", b.ID, b.Pattern)), nil
}
