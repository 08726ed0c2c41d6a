package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
	assert.Contains(t, info.String(), "holocron v"+Version)
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "holocron/"+Version, UserAgent())
}
