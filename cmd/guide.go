/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

// guide.go implements "searchpat guide". Pipes and redirects get the raw
// markdown so it can be saved or grepped.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/welbornprod/searchpat/guide"
	"github.com/welbornprod/searchpat/internal/config"
	"github.com/welbornprod/searchpat/internal/highlight"
)

var guideCmd = &cobra.Command{
	Use:   "guide [topic]",
	Short: "Show the searchpat usage guide",
	Long: `Outputs the searchpat guide.

  searchpat guide            # main guide
  searchpat guide patterns   # pattern syntax and case handling
  searchpat guide config     # config keys`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		topics, _ := guide.List()
		return topics, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runGuide,
}

func runGuide(_ *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	content, err := guide.Get(name)
	if err != nil {
		available, listErr := guide.List()
		if listErr != nil {
			return listErr
		}
		return fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", "))
	}

	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		_, err = fmt.Fprint(out, content)
		return err
	}

	// Terminals get rendered markdown, without colour under --no-color or NO_COLOR.
	style := "notty"
	if highlight.Auto(f, noColor || cfg.ColorMode() == config.ColorNever) {
		style = "dark"
	}
	rendered, err := glamour.Render(content, style)
	if err != nil {
		logger.Debug("glamour render failed", "style", style, "err", err)
		rendered = content
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
