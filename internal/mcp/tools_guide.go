package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/welbornprod/searchpat/guide"
)

// getGuide returns a guide topic as markdown. An unknown topic is answered
// with the list of topics rather than a tool error, so the client can retry.
func (h *handlers) getGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	topic := getString(req, "topic", "")
	if content, err := guide.Get(topic); err == nil {
		return mcp.NewToolResultText(content), nil
	}

	topics, err := guide.List()
	if err != nil {
		return nil, fmt.Errorf("list guides: %w", err)
	}
	return jsonResult(map[string]any{
		"error":            fmt.Sprintf("unknown topic %q", topic),
		"available_topics": topics,
	})
}
