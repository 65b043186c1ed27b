// Package version holds build metadata injected via ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/umlbuilder/internal/version.Version=v0.3.0".
package version

import "fmt"

// Version is the release version.
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the full version line printed by --version.
func String() string {
	return fmt.Sprintf("umlbuilder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
