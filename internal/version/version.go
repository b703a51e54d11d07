// Package version holds application metadata. BuildDate and GoVersion may be
// set with -ldflags; otherwise they are read from the embedded build info.
package version

import (
	"runtime/debug"
	"strings"
)

const (
	AppName        = "Switchboard"
	AppDescription = "A Discord bot that finds the command you meant."
	Repository     = "https://github.com/keshon/switchboard"
)

var (
	BuildDate string
	GoVersion string
	Revision  string
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if GoVersion == "" {
		GoVersion = info.GoVersion
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.time":
			if BuildDate == "" {
				BuildDate = s.Value
			}
		case "vcs.revision":
			if Revision == "" {
				Revision = s.Value
			}
		}
	}
}

// Short returns a short revision id, or "unknown".
func Short() string {
	if Revision == "" {
		return "unknown"
	}
	if len(Revision) > 7 {
		return Revision[:7]
	}
	return strings.TrimSpace(Revision)
}
