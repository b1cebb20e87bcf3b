package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	def, err := Get("")
	require.NoError(t, err)
	assert.Contains(t, def, "# searchpat")

	named, err := Get("guide")
	require.NoError(t, err)
	assert.Equal(t, def, named)

	_, err = Get("nope")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	names, err := List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"config", "history", "mcp", "patterns"}, names)

	for _, n := range names {
		body, err := Get(n)
		require.NoError(t, err, n)
		assert.NotEmpty(t, body, n)
	}
}
