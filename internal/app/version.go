package app

import (
	"runtime/debug"
	"strings"
)

// Version and Commit may be overridden with -ldflags "-X". When Commit is not
// set, the VCS revision stamped by the go tool is used.
var (
	Version = "dev"
	Commit  = ""
)

// BuildVersion returns "version+shortcommit", or just the version when no
// revision is known. It is reported by /health and the startup log.
func BuildVersion() string {
	return buildVersion(Version, Commit, readRevision)
}

func buildVersion(version, commit string, revision func() (string, bool)) string {
	if commit == "" {
		rev, dirty := revision()
		if rev == "" {
			return version
		}
		commit = rev
		if dirty {
			commit += "-dirty"
		}
	}
	if len(commit) > 12 && !strings.HasSuffix(commit, "-dirty") {
		commit = commit[:12]
	}
	return version + "+" + commit
}

func readRevision() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev, dirty
}
