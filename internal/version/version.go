package version

import (
	"fmt"
	"runtime/debug"
)

// Version is overridden at build time with -ldflags "-X .../version.Version=...".
var Version = ""

func Get() string {
	if Version != "" {
		return Version
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unavailable"
	}

	var revision, modified string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}

	if revision == "" {
		return bi.Main.Version
	}
	if modified == "true" {
		return fmt.Sprintf("%s-dirty", revision)
	}
	return revision
}
