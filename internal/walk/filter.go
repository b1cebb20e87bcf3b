// filter.go decides which files found inside a directory are searched.
//
// Separated from walk.go so the selection rules (extension allow-list,
// exclude globs) can be built and tested without touching the filesystem.

package walk

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultTypes is the extension allow-list used when neither --all nor
// --types is given and the config does not override it.
var DefaultTypes = []string{
	".c", ".cfg", ".conf", ".cpp", ".cs", ".css", ".go", ".h", ".hpp",
	".html", ".ini", ".java", ".js", ".json", ".jsx", ".lua", ".md",
	".php", ".pl", ".py", ".rb", ".rs", ".rst", ".sh", ".sql", ".toml",
	".ts", ".tsx", ".txt", ".xml", ".yaml", ".yml",
}

// DefaultExclude lists globs pruned from directory walks by default.
var DefaultExclude = []string{".git", "node_modules", "__pycache__"}

// Filter selects files reached through directory expansion.
type Filter struct {
	// Extensions is the allow-list. Nil means every file.
	Extensions []string
	// Exclude holds doublestar globs matched against the slash-separated
	// path relative to the walked target and against the base name.
	Exclude []string
	// Hidden includes dot-files and dot-directories.
	Hidden bool
}

// ParseTypes splits a comma separated extension list ("py,.txt, md") into
// normalised extensions with a leading dot. Empty entries are dropped.
func ParseTypes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		if !slices.Contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func (f Filter) allowExt(ext string) bool {
	if f.Extensions == nil {
		return true
	}
	return slices.Contains(f.Extensions, ext)
}

func (f Filter) excluded(rel, name string) bool {
	for _, p := range f.Exclude {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Validate reports the first malformed exclude glob.
func (f Filter) Validate() error {
	for _, p := range f.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}
