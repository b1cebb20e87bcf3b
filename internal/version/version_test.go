package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	i := Get()
	assert.Equal(t, runtime.Version(), i.GoVersion)
	assert.Equal(t, runtime.GOOS+" "+runtime.GOARCH, i.Platform)
	assert.NotEmpty(t, i.BuildTag)
	assert.Equal(t, i.BuildTag, Short())
}

func TestString(t *testing.T) {
	s := Info{BuildTag: "v1.2.3", GitCommit: "abc1234"}.String()
	assert.Contains(t, s, "Build Tag:    v1.2.3\n")
	assert.Contains(t, s, "Git Commit:   abc1234\n")
}
