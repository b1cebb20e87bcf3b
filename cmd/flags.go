/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

// flags.go defines global CLI flags and accessors for shared state.
//
// Search flags live on the root command because searching is what the root
// command does. Subcommands only see the persistent flags declared here.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var validOutputFormats = []string{"json"}

const (
	flagLocal     = "local"
	flagLimit     = "limit"
	flagOlderThan = "older-than"
	flagAll       = "all"
)

var (
	output string
	debug  bool
)

// Search flags.
var (
	regexps       []string
	all           bool
	types         string
	reverse       bool
	noColor       bool
	printAll      bool
	sortOutput    bool
	namesOnly     bool
	caseSensitive bool
	maxLength     int
	workers       int
	exclude       []string
	hidden        bool
	noHistory     bool
)

// out is the output writer for commands. Defaults to os.Stdout.
var out io.Writer = os.Stdout

// errOut receives diagnostics, the progress line and error messages.
var errOut io.Writer = os.Stderr

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&output, "output", "o", "", "Output format: json")
	pf.BoolVarP(&debug, "debug", "d", false, "Print debug diagnostics to stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	f := rootCmd.Flags()
	f.StringArrayVarP(&regexps, "regexp", "e", nil, "Pattern to search for (repeatable, joined with |)")
	f.BoolVarP(&all, "all", "a", false, "Search every file regardless of extension")
	f.StringVarP(&types, "types", "t", "", "Comma separated extensions to search, e.g. go,md")
	f.BoolVarP(&reverse, "reverse", "r", false, "Report lines that do not match")
	f.BoolVar(&noColor, "no-color", false, "Disable colour output")
	f.BoolVarP(&printAll, "print-all", "p", false, "Print every file before searching it")
	f.BoolVarP(&sortOutput, "sort", "s", false, "Buffer results and print them sorted by path")
	f.BoolVarP(&namesOnly, "names", "n", false, "Print only the names of matching files")
	f.BoolVarP(&caseSensitive, "case-sensitive", "c", false, "Match case exactly")
	f.IntVarP(&maxLength, "max-length", "m", 0, "Skip matched lines of at least this many characters (0 keeps all)")
	f.IntVarP(&workers, "workers", "w", 0, "Concurrent file scans (default: number of CPUs)")
	f.StringArrayVarP(&exclude, "exclude", "x", nil, "Glob of paths to skip (repeatable)")
	f.BoolVar(&hidden, "hidden", false, "Include hidden files and directories")
	f.BoolVar(&noHistory, "no-history", false, "Do not record this search in the history")

	_ = rootCmd.RegisterFlagCompletionFunc("types", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"go", "md", "py", "js", "ts", "txt", "yaml", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
}
