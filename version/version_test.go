package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	oldVersion, oldHash := Version, GitHash
	defer func() { Version, GitHash = oldVersion, oldHash }()

	Version, GitHash = "v0.3.0", "None"
	assert.Equal(t, "v0.3.0", GetVersion())

	GitHash = "9f1c2d7e5ab3"
	assert.Equal(t, "v0.3.0-9f1c2d7", GetVersion())
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf)
	assert.Contains(t, buf.String(), "Git Branch:")
	assert.Contains(t, buf.String(), "Build Time (UTC):")
}
