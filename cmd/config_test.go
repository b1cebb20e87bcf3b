package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("get all shows defaults", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("config")
		env.contains(out, "color: auto")
		env.contains(out, "history.enabled: true")
		env.contains(out, "search.types: ")
	})

	t.Run("get single key after set", func(t *testing.T) {
		env := newTestEnv(t)

		env.contains(env.run("config", "search.workers", "3"), "search.workers = 3 (global)")
		env.equals(env.run("config", "search.workers"), "3")
		assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"))
	})

	t.Run("json", func(t *testing.T) {
		env := newTestEnv(t)

		var all map[string]string
		require.NoError(t, json.Unmarshal([]byte(env.run("-o", "json", "config")), &all))
		assert.Equal(t, "auto", all["color"])
	})
}

func TestConfig_Local(t *testing.T) {
	env := newTestEnv(t)

	env.contains(env.run("config", "--local", "search.types", "txt"), "(local)")
	assert.FileExists(t, filepath.Join(env.dir, ".searchpat", "config.yaml"))

	// local wins once it exists
	env.equals(env.run("config", "search.types"), "txt")
	_, err := os.Stat(filepath.Join(env.configDir, "config.yaml"))
	assert.True(t, os.IsNotExist(err), "global config should be untouched")
}

func TestConfig_AppliesToSearch(t *testing.T) {
	env := newTestEnv(t)
	env.write(sampleTree)

	env.run("config", "search.types", "txt")
	out := env.run("foo")
	env.contains(out, "b.txt")
	assert.NotContains(t, out, "a.py")

	env.run("config", "search.max_length", "6")
	r := env.invoke("foo")
	assert.Equal(t, 1, r.code, "foobar is six characters long")

	// the flag overrides the config value
	env.contains(env.run("-m", "0", "foo"), "b.txt")
}

func TestConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"invalid key", []string{"config", "invalid.key", "value"}},
		{"invalid get", []string{"config", "invalid.key"}},
		{"invalid bool", []string{"config", "history.enabled", "maybe"}},
		{"invalid colour", []string{"config", "color", "sometimes"}},
		{"non-numeric workers", []string{"config", "search.workers", "many"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)

			r := env.invoke(tc.args...)
			assert.Equal(t, 1, r.code)
			env.contains(r.stderr, "searchpat: config")
		})
	}
}

func TestConfig_Malformed(t *testing.T) {
	env := newTestEnv(t)
	env.write(sampleTree)
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte("search: [unclosed"), 0o644))

	r := env.invoke("foo")
	assert.Equal(t, 1, r.code)
	env.contains(r.stderr, "malformed config file")

	// config still runs so the file can be repaired
	env.run("config", "--local", "color", "never")
}
