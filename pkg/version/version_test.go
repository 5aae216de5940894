package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func setVars(t *testing.T, version, sha, date string) {
	t.Helper()
	ov, os, od := Version, GitSHA, GitCommitTimestamp
	Version, GitSHA, GitCommitTimestamp = version, sha, date
	t.Cleanup(func() { Version, GitSHA, GitCommitTimestamp = ov, os, od })
}

func TestInfoFromLdflags(t *testing.T) {
	setVars(t, "v1.2.0", "abcdef0123456789", "2024-01-02T03:04:05Z")
	stubBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.0.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffff"}},
	})

	info := Info()
	assert.Equal(t, "v1.2.0", info["version"])
	assert.Equal(t, "abcdef0123456789", info["commit"])
	assert.Equal(t, "2024-01-02T03:04:05Z", info["date"])
	assert.Equal(t, "ldflags", info["buildinfo"])
	assert.Equal(t, "v1.2.0 (abcdef0)", String())
}

func TestInfoFallsBackToBuildInfo(t *testing.T) {
	setVars(t, "", "", "")
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890abcdef"},
			{Key: "vcs.time", Value: "2024-05-06T07:08:09Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	info := Info()
	assert.Equal(t, "v0.3.0", info["version"])
	assert.Equal(t, "1234567890abcdef", info["commit"])
	assert.Equal(t, "2024-05-06T07:08:09Z", info["date"])
	assert.Equal(t, "module", info["buildinfo"])
	assert.Equal(t, "v0.3.0 (1234567-dirty)", String())
}

func TestInfoDevel(t *testing.T) {
	setVars(t, "", "", "")
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", Info()["version"])
	assert.Equal(t, "dev", String())

	stubBuildInfo(t, nil)
	assert.Equal(t, "dev", Info()["version"])
}

func TestInfoGoVersion(t *testing.T) {
	setVars(t, "", "", "")
	orig := GoVersion
	t.Cleanup(func() { GoVersion = orig })

	GoVersion = ""
	stubBuildInfo(t, &debug.BuildInfo{GoVersion: "go1.22.1"})
	assert.Equal(t, "go1.22.1", Info()["go"])

	stubBuildInfo(t, nil)
	assert.Equal(t, runtime.Version(), Info()["go"])

	GoVersion = "go1.21.0"
	stubBuildInfo(t, &debug.BuildInfo{GoVersion: "go1.22.1"})
	assert.Equal(t, "go1.21.0", Info()["go"])
}
