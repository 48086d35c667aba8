// Package version provides version information for the stackgen CLI.
package version

import (
	"fmt"
	"runtime"
)

// Version is the CLI version, overridden with -ldflags at release time.
var Version = "v0.1.0-dev"

// Commit is the git commit hash, overridden with -ldflags at release time.
var Commit = "unknown"

// GetVersionString returns the version line printed by `stackgen version`.
func GetVersionString() string {
	return fmt.Sprintf("stackgen version %s (commit %s, %s %s/%s)",
		Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
