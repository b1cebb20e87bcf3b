// Package walk enumerates the files a search should scan.
//
// Targets named on the command line are always searched, whatever their
// extension, the way a shell completion would hand them over. Directories are
// expanded recursively and their contents pass through a Filter first. The
// sequence is lazy so the first files can be scanned while the tree is still
// being walked.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileAccess is returned when a target or directory cannot be read.
var ErrFileAccess = errors.New("cannot access")

// Target is one file to scan.
type Target struct {
	Path   string
	Ext    string // last dot suffix of the base name, dot included, case preserved
	Direct bool   // named on the command line rather than found in a directory
}

// NewTarget builds a Target, deriving Ext from the path string alone.
func NewTarget(path string, direct bool) Target {
	return Target{Path: path, Ext: filepath.Ext(filepath.Base(path)), Direct: direct}
}

// Enumerate walks targets and yields every file to scan. Errors are yielded
// alongside a Target carrying the offending path; the consumer decides
// whether to continue. Returning false from the loop body stops the walk.
func Enumerate(ctx context.Context, targets []string, f Filter) iter.Seq2[Target, error] {
	return func(yield func(Target, error) bool) {
		for _, root := range targets {
			if ctx.Err() != nil {
				return
			}
			info, err := os.Stat(root)
			if err != nil {
				if !yield(Target{Path: root}, accessErr(root, err)) {
					return
				}
				continue
			}
			switch {
			case info.Mode().IsRegular():
				if !yield(NewTarget(root, true), nil) {
					return
				}
			case info.IsDir():
				if !walkDir(ctx, root, f, yield) {
					return
				}
			default:
				if !yield(Target{Path: root}, accessErr(root, errors.New("not a regular file or directory"))) {
					return
				}
			}
		}
	}
}

// walkDir expands one directory target. Returns false when the consumer
// asked to stop or ctx was cancelled.
//
// A root that is itself a symlink is walked through its resolved path, but
// paths are yielded under the name the caller gave. Symlinks met during the
// walk are followed only when they point at a regular file, so there is no
// directory cycle to detect.
func walkDir(ctx context.Context, root string, f Filter, yield func(Target, error) bool) bool {
	base := root
	if li, err := os.Lstat(root); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			return yield(Target{Path: root}, accessErr(root, err))
		}
		base = resolved
	}

	stopped := false
	_ = filepath.WalkDir(base, func(walked string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			stopped = true
			return filepath.SkipAll
		}
		path := walked
		if base != root {
			path = filepath.Join(root, relPath(base, walked))
		}
		if err != nil {
			if !yield(Target{Path: path}, accessErr(path, err)) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		}
		if walked == base {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if !f.Hidden && hidden(name) {
				return filepath.SkipDir
			}
			if f.excluded(relPath(base, walked), name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !regularFile(walked, d) {
			return nil
		}
		if !f.Hidden && hidden(name) {
			return nil
		}
		if f.excluded(relPath(base, walked), name) {
			return nil
		}
		t := NewTarget(path, false)
		if !f.allowExt(t.Ext) {
			return nil
		}
		if !yield(t, nil) {
			stopped = true
			return filepath.SkipAll
		}
		return nil
	})
	return !stopped
}

// regularFile reports whether d is a regular file, or a symlink that
// resolves to one. Dangling links and links to directories are not.
func regularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Check validates top-level targets before a search starts. Targets that
// exist as a file or directory are returned in ok; each failure is returned
// in errs wrapping ErrFileAccess.
func Check(targets []string) (ok []string, errs []error) {
	for _, t := range targets {
		info, err := os.Stat(t)
		if err != nil {
			errs = append(errs, accessErr(t, err))
			continue
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			errs = append(errs, accessErr(t, errors.New("not a regular file or directory")))
			continue
		}
		ok = append(ok, t)
	}
	return ok, errs
}

// IsFile reports whether path is an existing regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func accessErr(path string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return fmt.Errorf("%w %s: %v", ErrFileAccess, path, err)
}

func hidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
