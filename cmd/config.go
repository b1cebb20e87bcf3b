/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

// config.go implements the "searchpat config" command.
//
// Config follows a cascade model similar to git: local config
// (.searchpat/config.yaml) takes precedence over global
// (~/.searchpat/config.yaml). Writes go to the file that was read.

package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/welbornprod/searchpat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View or set config values",
	Long: `View or set config values.

  searchpat config                     # show config
  searchpat config search.types        # show search.types
  searchpat config search.types go,md  # set search.types

Configuration locations:
  Global: ~/.searchpat/config.yaml ($SEARCHPAT_CONFIG_DIR overrides ~/.searchpat)
  Local:  .searchpat/config.yaml

Uses local config if it exists, otherwise global.
Use --local to write the local file even if it does not exist yet.`,
	Args: cobra.MaximumNArgs(2),
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.ValidKeys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runConfig,
}

func init() {
	configCmd.Flags().Bool(flagLocal, false, "Use local config (.searchpat/config.yaml)")
	rootCmd.AddCommand(configCmd)
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool(flagLocal)

	var conf *config.Config
	var err error
	if forceLocal {
		conf, err = config.LoadScope(config.ScopeLocal)
	} else {
		conf, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	scopeName := "global"
	if conf.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch len(args) {
	case 0:
		values := conf.All()
		if JSON() {
			return PrintJSON(values)
		}
		for _, k := range slices.Sorted(maps.Keys(values)) {
			fmt.Fprintf(out, "%s: %s\n", k, values[k])
		}

	case 1:
		v, err := conf.Get(args[0])
		if err != nil {
			return fmt.Errorf("config get %q: %w", args[0], err)
		}
		if JSON() {
			return PrintJSON(map[string]string{args[0]: v})
		}
		fmt.Fprintln(out, v)

	case 2:
		if err := conf.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("config set %q: %w", args[0], err)
		}
		if err := conf.SaveScope(conf.Scope()); err != nil {
			return fmt.Errorf("config save: %w", err)
		}
		logger.Debug("config saved", "key", args[0], "path", conf.Path())
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0], "value": args[1], "scope": scopeName})
		}
		fmt.Fprintf(out, "%s = %s (%s)\n", args[0], args[1], scopeName)
	}
	return nil
}
