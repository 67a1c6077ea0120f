package bistro

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	t.Cleanup(func() { commit, builtAt = "", "" })

	info := VersionInfo()
	assert.Contains(t, info, "bistro "+Version)
	assert.Contains(t, info, runtime.Version())
	assert.NotContains(t, info, "commit:")

	SetBuildInfo("abc123", "")
	SetBuildInfo("", "2026-01-02")
	info = VersionInfo()
	assert.Contains(t, info, "commit:   abc123")
	assert.Contains(t, info, "built:    2026-01-02")
}
