/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

// history.go implements "searchpat history" for revisiting recorded runs.
//
// Runs are scoped to the working directory they were started from, so the
// list only shows searches made in the current project.

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/welbornprod/searchpat/internal/diff"
	"github.com/welbornprod/searchpat/internal/duration"
	"github.com/welbornprod/searchpat/internal/highlight"
	"github.com/welbornprod/searchpat/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches",
	Long: `List searches recorded in this directory, newest first.

  searchpat history              # last 20 runs
  searchpat history -l 5
  searchpat history show 12      # counters and matched lines of run 12
  searchpat history diff 11 12   # what changed between two runs
  searchpat history diff 11:12
  searchpat history prune --older-than 30d`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded search",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff <id1> <id2> | <id1:id2>",
	Short: "Compare the matched lines of two searches",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runHistoryDiff,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete recorded searches for this directory",
	Long: `Delete recorded searches made from this directory.

  searchpat history prune --older-than 30d   # keep the last 30 days
  searchpat history prune --all              # forget everything

Ages are a number followed by h, d, w or m (30 days).`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

func init() {
	historyCmd.Flags().IntP(flagLimit, "l", 20, "Maximum number of runs to list")
	historyPruneCmd.Flags().String(flagOlderThan, "", "Only delete runs older than this age, e.g. 30d")
	historyPruneCmd.Flags().Bool(flagAll, false, "Delete every run")
	historyPruneCmd.MarkFlagsOneRequired(flagOlderThan, flagAll)
	historyPruneCmd.MarkFlagsMutuallyExclusive(flagOlderThan, flagAll)
	historyCmd.AddCommand(historyShowCmd, historyDiffCmd, historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(c *cobra.Command, _ []string) error {
	limit, _ := c.Flags().GetInt(flagLimit)
	if limit < 1 {
		return fmt.Errorf("limit must be >= 1, got %d", limit)
	}
	if err := openHistory(); err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	runs, err := history.Recent(limit)
	if err != nil {
		return err
	}
	if JSON() {
		if runs == nil {
			runs = []history.Run{}
		}
		return PrintJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No searches recorded in this directory.")
		return nil
	}

	hl := highlight.New(useColour())
	width := len(strconv.FormatInt(runs[0].ID, 10))
	for _, r := range runs {
		fmt.Fprintf(out, "%*d  %-16s %s  %s\n", width, r.ID,
			humanize.Time(r.Start), hl.Path(r.Pattern), hl.Dim(outcome(r)))
	}
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}
	if err := openHistory(); err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	r, err := history.Get(id)
	if err != nil {
		return fmt.Errorf("run %d: %w", id, err)
	}
	if JSON() {
		return PrintJSON(r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run %d: %s\n", r.ID, r.Pattern)
	fmt.Fprintf(&b, "  source:  %s\n", r.Source)
	fmt.Fprintf(&b, "  started: %s (%s)\n", r.Start.Format("2006-01-02 15:04:05"), humanize.Time(r.Start))
	fmt.Fprintf(&b, "  targets: %s\n", strings.Join(r.Targets, " "))
	for k, v := range r.Detail {
		fmt.Fprintf(&b, "  %s: %v\n", k, v)
	}
	fmt.Fprintf(&b, "  result:  %s\n", outcome(*r))
	if r.Listing != "" {
		b.WriteByte('\n')
		b.WriteString(r.Listing)
	}
	_, err = fmt.Fprint(out, b.String())
	return err
}

func runHistoryDiff(_ *cobra.Command, args []string) error {
	var from, to int64
	var err error
	if len(args) == 1 {
		from, to, err = diff.ParseRange(args[0])
	} else {
		if from, err = parseRunID(args[0]); err == nil {
			to, err = parseRunID(args[1])
		}
	}
	if err != nil {
		return err
	}
	if err := openHistory(); err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	a, err := history.Get(from)
	if err != nil {
		return fmt.Errorf("run %d: %w", from, err)
	}
	b, err := history.Get(to)
	if err != nil {
		return fmt.Errorf("run %d: %w", to, err)
	}
	r := diff.Compute(a.Listing, b.Listing,
		fmt.Sprintf("run %d (%s)", a.ID, a.Pattern),
		fmt.Sprintf("run %d (%s)", b.ID, b.Pattern))

	if JSON() {
		return PrintJSON(r)
	}
	if !r.Changed() {
		fmt.Fprintf(out, "runs %d and %d matched the same lines\n", a.ID, b.ID)
		return nil
	}
	return r.Write(out, useColour())
}

func runHistoryPrune(c *cobra.Command, _ []string) error {
	var age time.Duration
	if s, _ := c.Flags().GetString(flagOlderThan); s != "" {
		var err error
		if age, err = duration.Parse(s); err != nil {
			return err
		}
	}
	if err := openHistory(); err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	n, err := history.Prune(age)
	if err != nil {
		return err
	}
	logger.Debug("history pruned", "runs", n, "db", history.DBPath())
	if JSON() {
		return PrintJSON(map[string]int64{"deleted": n})
	}
	if n == 0 {
		fmt.Fprintln(out, "No runs to prune")
		return nil
	}
	fmt.Fprintf(out, "Pruned %d run(s)\n", n)
	return nil
}

func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid run id %q", s)
	}
	return id, nil
}

// outcome summarises a run's counters in one line.
func outcome(r history.Run) string {
	switch {
	case r.Error != "" && r.FilesSearched == 0:
		return "error: " + r.Error
	case r.Cancelled:
		return fmt.Sprintf("%d lines in %d/%d files (cancelled)", r.Lines, r.FilesMatched, r.FilesSearched)
	default:
		return fmt.Sprintf("%d lines in %d/%d files", r.Lines, r.FilesMatched, r.FilesSearched)
	}
}
