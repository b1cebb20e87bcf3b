/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

// serve.go implements "searchpat serve", which blocks answering MCP
// requests over stdio until the client disconnects.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/welbornprod/searchpat/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server",
	Long: `Start an MCP (Model Context Protocol) server over stdio so LLM clients
can search, read the guide and compare recorded runs.

Searches run relative to the directory the server was started in.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		record := cfg.HistoryEnabled() && !noHistory
		if record {
			if err := openHistory(); err != nil {
				logger.Warn("history unavailable", "err", err)
				record = false
			}
		}
		return mcp.Serve(mcp.Options{Config: cfg, Logger: logger, History: record})
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record searches in the history")
	rootCmd.AddCommand(serveCmd)
}
