// Package version provides build version information embedding.
//
// Version and commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/linktrack/linktrack/internal/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = ""
)

// String returns "version (commit)" with the commit resolved from build
// info when not set by ldflags.
func String() string {
	commit := GitCommit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					commit = setting.Value
					break
				}
			}
		}
	}
	if commit == "" {
		return Version
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s (%s)", Version, commit)
}
