package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/welbornprod/searchpat/internal/config"
)

// configGet reports the settings searches run with. Config is read once
// when the server starts.
func (h *handlers) configGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	key := getString(req, "key", "")
	if key == "" {
		return jsonResult(h.cfg.All())
	}
	if !config.IsValidKey(key) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown key %q (valid: %s)",
			key, strings.Join(config.ValidKeys(), ", "))), nil
	}

	v, err := h.cfg.Get(key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{key: v})
}
