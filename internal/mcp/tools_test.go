package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welbornprod/searchpat/internal/config"
	"github.com/welbornprod/searchpat/internal/history"
)

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func testTree(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.go":      "package a\n\nfunc Foo() {}\n",
		"b.md":      "# Foo\nnothing\n",
		"c.bin":     "foo\x00",
		"sub/d.txt": "FOO bar\n",
	}
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	t.Chdir(dir)
}

func newHandlers() *handlers {
	return &handlers{cfg: &config.Config{}}
}

func TestSearch(t *testing.T) {
	testTree(t)
	h := newHandlers()

	res, err := h.search(context.Background(), request(map[string]any{"pattern": "foo"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var out searchResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	require.Len(t, out.Results, 3)
	assert.Equal(t, "a.go", out.Results[0].Path)
	assert.Equal(t, "b.md", out.Results[1].Path)
	assert.Equal(t, filepath.Join("sub", "d.txt"), out.Results[2].Path)
	assert.Equal(t, 3, out.FilesSearched, "c.bin is filtered by the default type list")
	assert.Equal(t, 3, out.LinesMatched)
	assert.Contains(t, out.Summary, "3 lines matched")
}

func TestSearch_Options(t *testing.T) {
	testTree(t)
	h := newHandlers()

	t.Run("types and case", func(t *testing.T) {
		res, err := h.search(context.Background(), request(map[string]any{
			"pattern": "foo", "types": ".go,.txt", "case_sensitive": true,
		}))
		require.NoError(t, err)
		var out searchResult
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
		assert.Zero(t, out.FilesMatched, "only Foo and FOO exist")
		assert.Equal(t, 2, out.FilesSearched)
	})

	t.Run("all with limit", func(t *testing.T) {
		res, err := h.search(context.Background(), request(map[string]any{
			"pattern": "foo", "all": true, "limit": float64(1),
		}))
		require.NoError(t, err)
		var out searchResult
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
		assert.Len(t, out.Results, 1)
		assert.True(t, out.Truncated)
		assert.Equal(t, 4, out.FilesSearched)
		assert.Equal(t, 1, out.FilesSkipped)
	})

	t.Run("extra patterns and paths", func(t *testing.T) {
		res, err := h.search(context.Background(), request(map[string]any{
			"pattern": "zzz", "patterns": []any{"nothing"}, "paths": []any{"b.md"},
		}))
		require.NoError(t, err)
		var out searchResult
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
		require.Len(t, out.Results, 1)
		assert.Equal(t, 2, out.Results[0].Lines[0].Number)
	})
}

func TestSearch_Errors(t *testing.T) {
	testTree(t)
	h := newHandlers()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing pattern", map[string]any{}},
		{"bad pattern", map[string]any{"pattern": "[invalid("}},
		{"all and types", map[string]any{"pattern": "x", "all": true, "types": ".go"}},
		{"no targets", map[string]any{"pattern": "x", "paths": []any{"missing"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.search(context.Background(), request(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestConfigGet(t *testing.T) {
	cfg := &config.Config{}
	require.NoError(t, cfg.Set("color", "never"))
	h := &handlers{cfg: cfg}

	res, err := h.configGet(context.Background(), request(map[string]any{"key": "color"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"never"}`, text(t, res))

	res, err = h.configGet(context.Background(), request(nil))
	require.NoError(t, err)
	var all map[string]string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &all))
	assert.Len(t, all, len(config.ValidKeys()))

	res, err = h.configGet(context.Background(), request(map[string]any{"key": "bogus"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGuide(t *testing.T) {
	h := newHandlers()

	res, err := h.getGuide(context.Background(), request(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "# searchpat")

	res, err = h.getGuide(context.Background(), request(map[string]any{"topic": "nope"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "available_topics")
}

func TestReadGuide(t *testing.T) {
	h := newHandlers()

	var req mcp.ReadResourceRequest
	req.Params.URI = "searchpat://guide/patterns"
	contents, err := h.readGuide(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, "# Patterns")

	for _, uri := range []string{"searchpat://guide/", "other://guide/x", "searchpat://guide/a/b"} {
		_, err := parseGuideURI(uri)
		assert.ErrorIs(t, err, ErrInvalidURI, uri)
	}
}

func TestHistoryTools(t *testing.T) {
	t.Setenv(config.DirEnv, t.TempDir())
	require.NoError(t, history.Open())
	t.Cleanup(history.Close)
	history.SetProject(t.TempDir())

	testTree(t)
	h := &handlers{cfg: &config.Config{}, history: true}

	for _, p := range []string{"foo", "nothing"} {
		res, err := h.search(context.Background(), request(map[string]any{"pattern": p}))
		require.NoError(t, err)
		require.False(t, res.IsError)
	}

	res, err := h.historyList(context.Background(), request(nil))
	require.NoError(t, err)
	var runs []history.Run
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &runs))
	require.Len(t, runs, 2)
	newer, older := runs[0].ID, runs[1].ID

	res, err = h.historyList(context.Background(), request(map[string]any{"id": float64(older)}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "a.go:3: func Foo() {}")

	res, err = h.historyDiff(context.Background(), request(map[string]any{
		"from": float64(older), "to": float64(newer),
	}))
	require.NoError(t, err)
	var d struct {
		Added   int    `json:"added"`
		Removed int    `json:"removed"`
		Diff    string `json:"diff"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &d))
	assert.Equal(t, 3, d.Removed)
	assert.Equal(t, 1, d.Added)
	assert.Contains(t, d.Diff, "+ b.md:2: nothing")

	res, err = h.historyDiff(context.Background(), request(map[string]any{"from": float64(1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
