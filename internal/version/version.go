package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

//nolint:gochecknoglobals // Overridden with -ldflags at build time.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// shortCommitLength is how many characters of a VCS revision are shown.
const shortCommitLength = 7

// Info is the resolved build metadata.
type Info struct {
	// Version is the semantic version.
	Version string
	// Commit is the source revision.
	Commit string
	// BuildTime is when the binary was built.
	BuildTime string
	// Platform is GOOS/GOARCH of the binary.
	Platform string
	// GoVersion is the toolchain that built the binary.
	GoVersion string
}

// Get resolves the build metadata, preferring ldflags values over the VCS stamp.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion: runtime.Version(),
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "none" && setting.Value != "" {
				info.Commit = setting.Value[:min(len(setting.Value), shortCommitLength)]
			}
		case "vcs.time":
			if info.BuildTime == "unknown" && setting.Value != "" {
				info.BuildTime = setting.Value
			}
		}
	}

	return info
}

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit, build time and platform.
func Full() string {
	info := Get()

	return fmt.Sprintf("version: %s, commit: %s, built at: %s, %s, %s",
		info.Version, info.Commit, info.BuildTime, info.GoVersion, info.Platform)
}
