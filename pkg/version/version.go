// Package version exposes build metadata set through -ldflags.
package version

import (
	"runtime/debug"
)

const unknown = "unknown"

// Build metadata, overridden with -ldflags "-X github.com/Sumatoshi-tech/restring/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills unset metadata from the module build info.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknown && s.Value != "" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknown && s.Value != "" {
				Date = s.Value
			}
		}
	}
}

// String formats the metadata on one line.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
