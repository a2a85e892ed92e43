// Package misc holds build time program information.
package misc

import (
	"runtime/debug"
)

// Set at link time: -ldflags "-X sc2sx/misc.version=... -X sc2sx/misc.githash=...".
var (
	appName = "sc2sx"
	version = "dev"
	githash = ""
)

// GetAppName returns program name.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns source revision program was built from.
func GetGitHash() string {
	if githash != "" {
		return githash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
