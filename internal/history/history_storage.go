// history_storage.go keeps the SQLite side of the run history away from the
// builder API. Runs carry a hash of the working directory rather than the
// path itself, so listings can be scoped to a project without storing where
// the user keeps their code.

package history

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	"github.com/welbornprod/searchpat/internal/config"
)

// Store persists runs in SQLite.
type Store struct {
	db      *sql.DB
	project string
}

func (s *Store) record(r Run) error {
	targets, _ := json.Marshal(r.Targets)
	var detail *string
	if len(r.Detail) > 0 {
		if b, err := json.Marshal(r.Detail); err == nil {
			d := string(b)
			detail = &d
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (start, elapsed_ns, project, source, pattern, targets, detail,
		                  files_searched, files_matched, files_skipped, lines,
		                  cancelled, success, error, listing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Start.UnixNano(), int64(r.Elapsed), s.project, r.Source, r.Pattern, string(targets), detail,
		r.FilesSearched, r.FilesMatched, r.FilesSkipped, r.Lines,
		boolInt(r.Cancelled), boolInt(r.Success), nilIfEmpty(r.Error), r.Listing,
	)
	if err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

const runColumns = `id, start, elapsed_ns, source, pattern, targets, detail,
	files_searched, files_matched, files_skipped, lines, cancelled, success, error`

func (s *Store) recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs
		WHERE project = ? ORDER BY id DESC LIMIT ?`, s.project, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := scanRun(rows, &r); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *Store) get(id int64) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+`, listing FROM runs WHERE id = ?`, id)
	var r Run
	if err := scanRun(row, &r, &r.Listing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &r, nil
}

// prune deletes this project's runs that started before cutoff and
// compacts the file.
func (s *Store) prune(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM runs WHERE project = ? AND start < ?`,
		s.project, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := s.db.Exec(`VACUUM`); err != nil {
			return n, fmt.Errorf("compacting history: %w", err)
		}
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, r *Run, extra ...any) error {
	var (
		start, elapsed       int64
		targets              string
		detail, errMsg       sql.NullString
		cancelled, succeeded int
	)
	dest := []any{&r.ID, &start, &elapsed, &r.Source, &r.Pattern, &targets, &detail,
		&r.FilesSearched, &r.FilesMatched, &r.FilesSkipped, &r.Lines,
		&cancelled, &succeeded, &errMsg}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	r.Start = time.Unix(0, start)
	r.Elapsed = time.Duration(elapsed)
	r.Cancelled = cancelled != 0
	r.Success = succeeded != 0
	r.Error = errMsg.String
	_ = json.Unmarshal([]byte(targets), &r.Targets)
	if detail.Valid {
		_ = json.Unmarshal([]byte(detail.String), &r.Detail)
	}
	return nil
}

// dbPathFunc is the function that returns the database path.
// Tests can override this to use a temp directory.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	dir := config.Dir()
	if dir == "" {
		// No home directory (containers, CI); keep history next to the project.
		dir = ".searchpat"
	}
	return filepath.Join(dir, "history.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path to the history database.
func DBPath() string {
	return dbPath()
}

// hash creates a project identifier from the directory path.
func hash(s string) string {
	h, err := blake2b.New(8, nil) // 64-bit = 16 hex chars
	if err != nil {
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// migrate creates the runs table if it doesn't exist.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			start          INTEGER NOT NULL,
			elapsed_ns     INTEGER NOT NULL,
			project        TEXT NOT NULL,
			source         TEXT NOT NULL,
			pattern        TEXT NOT NULL,
			targets        TEXT NOT NULL,
			detail         TEXT,
			files_searched INTEGER NOT NULL,
			files_matched  INTEGER NOT NULL,
			files_skipped  INTEGER NOT NULL,
			lines          INTEGER NOT NULL,
			cancelled      INTEGER NOT NULL,
			success        INTEGER NOT NULL,
			error          TEXT,
			listing        TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project);
	`)
	return err
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
