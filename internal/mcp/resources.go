// resources.go serves the guide pages as MCP resources so clients can load
// them as context without a tool call. URIs are searchpat://guide/{topic};
// the overview is searchpat://guide/guide.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/welbornprod/searchpat/guide"
)

const guidePrefix = "searchpat://guide/"

// ErrInvalidURI indicates a malformed resource URI.
var ErrInvalidURI = errors.New("invalid URI")

func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			guidePrefix+"{topic}",
			"Guide",
			mcp.WithTemplateDescription("searchpat usage guide by topic"),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		h.readGuide,
	)
}

func (h *handlers) readGuide(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) { //nolint:revive // ctx for future use
	topic, err := parseGuideURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	content, err := guide.Get(topic)
	if err != nil {
		return nil, fmt.Errorf("guide %q: %w", topic, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     content,
		},
	}, nil
}

func parseGuideURI(uri string) (string, error) {
	topic, ok := strings.CutPrefix(uri, guidePrefix)
	if !ok || topic == "" || strings.Contains(topic, "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	return topic, nil
}
