// Package history records every search run in a SQLite database at
// ~/.searchpat/history.db so earlier results can be listed, re-read and
// diffed against later ones.
//
// # Fluent API
//
//	history.Event("cli", pattern).
//		Targets(targets).
//		Detail("reverse", true).
//		Result(rep).
//		Write(err)
//
// Sources are "cli" for the command line and "mcp" for the MCP server.
// Recording is best-effort: a failed write is reported on stderr and never
// changes the outcome of the search itself.
package history

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/welbornprod/searchpat/internal/aggregate"
	"github.com/welbornprod/searchpat/internal/scan"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// ErrNotOpen is returned by queries when Open has not been called.
var ErrNotOpen = errors.New("history not open")

var (
	global *Store
	mu     sync.Mutex
)

// Run is one recorded search.
type Run struct {
	ID      int64          `json:"id"`
	Source  string         `json:"source"`
	Pattern string         `json:"pattern"`
	Targets []string       `json:"targets"`
	Start   time.Time      `json:"start"`
	Elapsed time.Duration  `json:"elapsed_ns"`
	Detail  map[string]any `json:"detail,omitempty"`

	FilesSearched int  `json:"files_searched"`
	FilesMatched  int  `json:"files_matched"`
	FilesSkipped  int  `json:"files_skipped"`
	Lines         int  `json:"lines_matched"`
	Cancelled     bool `json:"cancelled,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Listing is the sorted "path:line: text" form of every reported line.
	Listing string `json:"listing,omitempty"`
}

// Builder constructs a Run using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write].
type Builder struct {
	run Run
}

// Event starts recording a run of pattern from source.
func Event(source, pattern string) *Builder {
	return &Builder{
		run: Run{
			Source:  source,
			Pattern: pattern,
			Start:   time.Now(),
		},
	}
}

// Targets sets the searched targets.
func (b *Builder) Targets(targets []string) *Builder {
	b.run.Targets = slices.Clone(targets)
	return b
}

// Detail adds a key-value pair, typically a non-default flag.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.run.Detail == nil {
		b.run.Detail = make(map[string]any)
	}
	b.run.Detail[key] = value
	return b
}

// Result copies counters and the listing from a sealed report. A nil
// report (the search never started) leaves them zero.
func (b *Builder) Result(rep *aggregate.Report) *Builder {
	if rep == nil {
		return b
	}
	b.run.FilesSearched = rep.FilesSearched
	b.run.FilesMatched = rep.FilesMatched()
	b.run.FilesSkipped = rep.FilesSkipped
	b.run.Lines = rep.TotalLines
	b.run.Elapsed = rep.Elapsed
	b.run.Cancelled = rep.Cancelled
	b.run.Listing = Listing(rep.Results)
	return b
}

// Write records the run, deriving success from err. The returned error is
// the store's; err itself is only recorded.
func (b *Builder) Write(err error) error {
	b.run.Success = err == nil
	if err != nil {
		b.run.Error = err.Error()
	}
	if b.run.Elapsed == 0 {
		b.run.Elapsed = time.Since(b.run.Start)
	}
	return Record(b.run)
}

// Listing renders results as sorted "path:line: text" lines, the form used
// to compare runs.
func Listing(results []*scan.Result) string {
	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b *scan.Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	var sb strings.Builder
	for _, r := range sorted {
		for _, l := range r.Lines {
			sb.WriteString(r.Path)
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(l.Number))
			sb.WriteString(": ")
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Open initialises the global store. Safe to call multiple times.
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Store{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent runs. The dir
// should be the absolute working directory.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Record writes a run. Safe to call if the store is not open (no-op).
func Record(r Run) error {
	if s := current(); s != nil {
		return s.record(r)
	}
	return nil
}

// Recent returns up to limit runs of the current project, newest first.
func Recent(limit int) ([]Run, error) {
	s := current()
	if s == nil {
		return nil, ErrNotOpen
	}
	return s.recent(limit)
}

// Get returns one run by id, including its listing.
func Get(id int64) (*Run, error) {
	s := current()
	if s == nil {
		return nil, ErrNotOpen
	}
	return s.get(id)
}

// Prune removes the current project's runs older than age and returns how
// many were deleted. An age of zero removes every run.
func Prune(age time.Duration) (int64, error) {
	s := current()
	if s == nil {
		return 0, ErrNotOpen
	}
	return s.prune(time.Now().Add(-age))
}

// Close closes the global store.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}

func current() *Store {
	mu.Lock()
	defer mu.Unlock()
	return global
}
