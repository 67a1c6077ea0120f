// Package bistro carries the build identity reported by `bistro version`.
package bistro

import (
	"fmt"
	"runtime"
	"strings"
)

// Version is the release of this build.
const Version = "0.1.0"

var (
	commit  string
	builtAt string
)

// SetBuildInfo records the values injected by ldflags. Empty values are ignored.
func SetBuildInfo(gitCommit, buildDate string) {
	if gitCommit != "" {
		commit = gitCommit
	}
	if buildDate != "" {
		builtAt = buildDate
	}
}

// VersionInfo prints the version block, omitting build fields that were never set.
func VersionInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bistro %s\n", Version)
	if commit != "" {
		fmt.Fprintf(&b, "  commit:   %s\n", commit)
	}
	if builtAt != "" {
		fmt.Fprintf(&b, "  built:    %s\n", builtAt)
	}
	fmt.Fprintf(&b, "  go:       %s\n", runtime.Version())
	fmt.Fprintf(&b, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return b.String()
}
