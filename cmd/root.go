/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

// root.go defines the root command and CLI execution entry point.
//
// The root command is the search itself: "searchpat foo src" searches src
// for foo. Subcommands (config, history, guide, serve, version) are matched
// by name first, so a pattern that collides with one must be given with -e.
//
// Execute owns the process lifecycle: signal handling, the history
// database, error printing and the exit status.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/welbornprod/searchpat/internal/config"
	"github.com/welbornprod/searchpat/internal/dispatch"
	"github.com/welbornprod/searchpat/internal/history"
	"github.com/welbornprod/searchpat/internal/report"
)

// Exit statuses.
const (
	exitOK          = 0
	exitFailure     = 1 // no match, or an error
	exitInterrupted = 130
	exitBrokenPipe  = 141
)

// errNoMatch ends a search that completed without reporting anything. It is
// never printed.
var errNoMatch = errors.New("no matches")

var (
	cfg    *config.Config
	logger *log.Logger
)

// noConfigCommands can run with a missing or malformed config file, so a
// broken config can still be inspected and repaired.
var noConfigCommands = map[string]bool{
	"config":  true,
	"guide":   true,
	"version": true,
	"help":    true,
}

var rootCmd = &cobra.Command{
	Use:   "searchpat [flags] <pattern> [target...]",
	Short: "Search files for lines matching a regular expression",
	Long: `Search files and directories for lines matching a regular expression.

Directories are walked recursively and searched concurrently. Results are
printed per file as soon as each file is done, followed by a summary.

  searchpat foo                  # search the current directory
  searchpat 'func \w+' cmd main.go
  searchpat -e foo -e bar src    # foo or bar
  searchpat -r '^\s*$' notes.md  # lines that are not blank

Matching ignores case unless -c is given. Only known text extensions are
searched unless --all or --types is given. Run 'searchpat guide' for more.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(c *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		logger = newLogger(debug)

		if noConfigCommands[topLevelCmdName(c)] {
			cfg = &config.Config{}
			return nil
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("config load: %w", err)
		}
		logger.Debug("config loaded", "path", cfg.Path())
		return nil
	},
	RunE: runSearch,
}

// newLogger returns the stderr diagnostics logger. Warnings are always
// shown; debug output needs --debug.
func newLogger(verbose bool) *log.Logger {
	l := log.NewWithOptions(errOut, log.Options{Prefix: "searchpat"})
	l.SetLevel(log.WarnLevel)
	if verbose {
		l.SetLevel(log.DebugLevel)
		l.SetReportTimestamp(true)
	}
	return l
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "searchpat history diff 1 2", returns "history".
func topLevelCmdName(c *cobra.Command) string {
	for c.HasParent() && c.Parent().HasParent() {
		c = c.Parent()
	}
	return c.Name()
}

// Execute runs the root command and exits with its status.
func Execute() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ignoreBrokenPipe()

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()
	// After the first interrupt the default handler is restored, so a
	// second one kills the process without waiting for in-flight files.
	context.AfterFunc(ctx, stop)

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	history.Close()

	if err != nil && !silent(err) {
		if JSON() {
			_ = PrintJSON(map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(errOut, "searchpat: %v\n", err)
		}
	}
	return exitCode(err)
}

// exitCode maps the outcome of a command to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, report.ErrBrokenPipe), errors.Is(err, syscall.EPIPE):
		return exitBrokenPipe
	case errors.Is(err, dispatch.ErrCancelled):
		return exitInterrupted
	default:
		return exitFailure
	}
}

// silent reports whether err speaks for itself through the exit status.
func silent(err error) bool {
	return errors.Is(err, errNoMatch) ||
		errors.Is(err, dispatch.ErrCancelled) ||
		errors.Is(err, report.ErrBrokenPipe) ||
		errors.Is(err, syscall.EPIPE)
}
