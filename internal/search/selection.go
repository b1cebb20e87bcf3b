package search

import (
	"errors"
	"slices"
	"strings"

	"github.com/welbornprod/searchpat/internal/config"
	"github.com/welbornprod/searchpat/internal/walk"
)

// ErrSelection is returned for contradictory file selection options.
var ErrSelection = errors.New("--all and --types cannot be used together")

// Selection is the caller's choice of which files a search covers, before
// config defaults are applied.
type Selection struct {
	All     bool
	Types   string // comma separated extensions
	Exclude []string
	Hidden  bool
}

// Filter resolves s against cfg. Explicit choices win; otherwise the
// configured type list is used, falling back to walk.DefaultTypes. Exclude
// globs accumulate: built-in, configured, then s.Exclude.
func (s Selection) Filter(cfg *config.Config) (walk.Filter, error) {
	if s.All && s.Types != "" {
		return walk.Filter{}, ErrSelection
	}
	var f walk.Filter
	switch {
	case s.All:
	case s.Types != "":
		f.Extensions = walk.ParseTypes(s.Types)
	case len(cfg.Types()) > 0:
		f.Extensions = walk.ParseTypes(strings.Join(cfg.Types(), ","))
	default:
		f.Extensions = walk.DefaultTypes
	}
	f.Exclude = slices.Concat(walk.DefaultExclude, cfg.Exclude(), s.Exclude)
	f.Hidden = s.Hidden || cfg.Hidden()
	return f, f.Validate()
}
