// The cmd tests build the searchpat binary once and drive it with
// exec.Command, so flag parsing, exit statuses and the split between stdout
// and stderr are exercised exactly as a shell sees them. The internal
// packages carry their own unit tests.

package cmd

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the searchpat binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "searchpat-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "searchpat"
		if os.PathSeparator == '\\' {
			binaryName = "searchpat.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		projectRoot := filepath.Dir(mustGetwd())
		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t         *testing.T
	dir       string // working directory of every run
	configDir string // SEARCHPAT_CONFIG_DIR, holding global config and history
	binary    string
}

// result is the outcome of one searchpat invocation.
type result struct {
	stdout string
	stderr string
	code   int
}

// newTestEnv creates an empty working directory and an isolated config
// directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		t:         t,
		dir:       t.TempDir(),
		configDir: t.TempDir(),
		binary:    buildBinary(t),
	}
}

// write creates files under the working directory.
func (e *testEnv) write(files map[string]string) {
	e.t.Helper()
	for name, body := range files {
		p := filepath.Join(e.dir, filepath.FromSlash(name))
		require.NoError(e.t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(e.t, os.WriteFile(p, []byte(body), 0o644))
	}
}

// invoke runs searchpat and reports its streams and exit status.
func (e *testEnv) invoke(args ...string) result {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(), "SEARCHPAT_CONFIG_DIR="+e.configDir, "NO_COLOR=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		require.True(e.t, errors.As(err, &exitErr), "searchpat %v: %v", args, err)
		code = exitErr.ExitCode()
	}
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// run executes searchpat, requires success and returns stdout.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	r := e.invoke(args...)
	if r.code != 0 {
		e.t.Fatalf("searchpat %v exited %d\nstdout: %s\nstderr: %s", args, r.code, r.stdout, r.stderr)
	}
	return r.stdout
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// equals checks if output equals expected string (trimmed).
func (e *testEnv) equals(output, expected string) {
	e.t.Helper()
	assert.Equal(e.t, strings.TrimSpace(expected), strings.TrimSpace(output))
}
