// Package mcp implements the Model Context Protocol server, exposing
// searchpat to LLM clients. Searches run through the same engine as the
// command line and are recorded in the same history.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/welbornprod/searchpat/internal/config"
	"github.com/welbornprod/searchpat/internal/version"
)

// Options configures the server.
type Options struct {
	Config  *config.Config
	Logger  *log.Logger // must write to stderr; stdout carries JSON-RPC
	History bool        // record searches
}

// Serve runs the MCP server over stdio until the client disconnects.
func Serve(opts Options) error {
	s := New(opts)

	slog.Info("searchpat MCP server ready", "version", version.Short(), "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// New builds the server with every tool and resource registered. The
// charmbracelet logger becomes the default slog handler so mcp-go and the
// tools share one stderr format.
func New(opts Options) *server.MCPServer {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Logger != nil {
		slog.SetDefault(slog.New(opts.Logger))
	}
	h := &handlers{cfg: opts.Config, logger: opts.Logger, history: opts.History}

	s := server.NewMCPServer(
		"searchpat",
		version.Short(),
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)
	registerResources(s, h)
	registerTools(s, h)
	return s
}

// handlers gives tool handlers access to the loaded config.
type handlers struct {
	cfg     *config.Config
	logger  *log.Logger
	history bool
}

// registerTools exposes searchpat operations as MCP tools.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("searchpat_search",
			mcp.WithDescription("Search files under the working directory for lines matching a regular expression (RE2 syntax, case-insensitive by default)"),
			mcp.WithString("pattern", mcp.Required(), mcp.Description("Regular expression")),
			mcp.WithArray("patterns", mcp.Description("Additional alternative patterns"), mcp.WithStringItems()),
			mcp.WithArray("paths", mcp.Description("Files or directories to search (default: working directory)"), mcp.WithStringItems()),
			mcp.WithString("types", mcp.Description("Comma separated extensions to search, e.g. \".go,.md\"")),
			mcp.WithBoolean("all", mcp.Description("Search every file regardless of extension")),
			mcp.WithBoolean("reverse", mcp.Description("Report lines that do NOT match")),
			mcp.WithBoolean("case_sensitive", mcp.Description("Match case exactly")),
			mcp.WithNumber("max_length", mcp.Description("Drop matching lines at least this many characters long")),
			mcp.WithNumber("limit", mcp.Description("Maximum files in the response (default 100)")),
		),
		h.search,
	)

	s.AddTool(
		mcp.NewTool("searchpat_history",
			mcp.WithDescription("List recent searches, or show one run's matches when id is given"),
			mcp.WithNumber("id", mcp.Description("Run id to show")),
			mcp.WithNumber("limit", mcp.Description("Number of runs to list (default 20)")),
		),
		h.historyList,
	)

	s.AddTool(
		mcp.NewTool("searchpat_diff",
			mcp.WithDescription("Compare the matches of two recorded runs"),
			mcp.WithNumber("from", mcp.Required(), mcp.Description("Older run id")),
			mcp.WithNumber("to", mcp.Required(), mcp.Description("Newer run id")),
		),
		h.historyDiff,
	)

	s.AddTool(
		mcp.NewTool("searchpat_config_get",
			mcp.WithDescription("Get a configuration value, or all values when key is omitted"),
			mcp.WithString("key", mcp.Description("Config key, e.g. search.types")),
		),
		h.configGet,
	)

	s.AddTool(
		mcp.NewTool("searchpat_guide",
			mcp.WithDescription("Get help content for searchpat"),
			mcp.WithString("topic", mcp.Description("Guide topic (omit for the overview)")),
		),
		h.getGuide,
	)
}
