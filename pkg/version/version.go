// Package version reports the vergen binary's own build metadata.
//
// Release builds set the variables with the output of
// `vergen emit --format ldflags --package github.com/milan604/vergen/pkg/version`.
// Anything left empty is filled from the module build info when Info is called.
package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// These variables are intended to be set at build time via -ldflags.
var (
	// Version is the semantic version of the build, e.g. v0.1.0.
	Version = ""
	// GitSHA is the commit the binary was built from.
	GitSHA = ""
	// GitCommitTimestamp is the commit time in RFC 3339.
	GitCommitTimestamp = ""
	// BuildTimestamp is the build time in RFC 3339.
	BuildTimestamp = ""
	// GoVersion is the Go toolchain version used for the build. When empty the
	// build info or the running binary's runtime.Version is reported.
	GoVersion = ""
)

var readBuildInfo = debug.ReadBuildInfo

// Info returns a map of version/build metadata suitable for logging or JSON output.
func Info() map[string]string {
	info := map[string]string{
		"version":   Version,
		"commit":    GitSHA,
		"date":      GitCommitTimestamp,
		"built":     BuildTimestamp,
		"go":        GoVersion,
		"modified":  "",
		"goos":      runtime.GOOS,
		"goarch":    runtime.GOARCH,
		"compiler":  runtime.Compiler,
		"buildinfo": "ldflags",
	}

	bi, ok := readBuildInfo()
	if !ok {
		if info["version"] == "" {
			info["version"] = "dev"
		}
		if info["go"] == "" {
			info["go"] = runtime.Version()
		}
		return info
	}

	if info["version"] == "" {
		info["version"] = bi.Main.Version
		info["buildinfo"] = "module"
	}
	if info["version"] == "" || info["version"] == "(devel)" {
		info["version"] = "dev"
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info["commit"] == "" {
				info["commit"] = s.Value
			}
		case "vcs.time":
			if info["date"] == "" {
				info["date"] = s.Value
			}
		case "vcs.modified":
			info["modified"] = s.Value
		}
	}
	if info["go"] == "" {
		info["go"] = bi.GoVersion
	}
	if info["go"] == "" {
		info["go"] = runtime.Version()
	}
	return info
}

// String renders the version with a short commit, e.g. "v1.2.0 (abc1234)".
func String() string {
	info := Info()
	commit := info["commit"]
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit == "" {
		return info["version"]
	}
	if strings.EqualFold(info["modified"], "true") {
		commit += "-dirty"
	}
	return info["version"] + " (" + commit + ")"
}
