// Package version carries build metadata stamped by the linker.
package version

import "fmt"

var (
	// GitVersion is the semantic version of the build, set via -ldflags.
	GitVersion = "unknown"
	// GitCommit is the git commit hash of the build, set via -ldflags.
	GitCommit = "unknown"
)

// String renders the build identity for --version output.
func String() string {
	return fmt.Sprintf("gitVersion=%s, gitCommit=%s", GitVersion, GitCommit)
}
