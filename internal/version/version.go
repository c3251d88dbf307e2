// Package version reports the build the binary came from.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X".
var (
	Commit    = ""
	BuildTime = ""
)

// String returns the version string. Without ldflags the commit and time
// come from the VCS stamp Go embeds in module builds.
func String() string {
	commit, built := Commit, BuildTime
	if commit == "" || built == "" {
		c, b := vcsStamp()
		if commit == "" {
			commit = c
		}
		if built == "" {
			built = b
		}
	}
	return fmt.Sprintf("rollcall dev (commit: %s, built: %s)", short(orUnknown(commit)), orUnknown(built))
}

func vcsStamp() (commit, built string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			built = s.Value
		}
	}
	return commit, built
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
