package sysinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherOSLinux(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte("NAME=\"Arch Linux\"\nVERSION_ID=rolling\n"), 0o644))
	old := osReleasePath
	osReleasePath = path
	t.Cleanup(func() { osReleasePath = old })

	var f Facts
	gatherOS(&f)
	assert.Equal(t, "Arch Linux", f.OSName)
	assert.Equal(t, "Linux rolling Arch Linux", f.OSVersion)
	assert.Positive(t, f.TotalMemory)
}

func TestGatherOSWithoutRelease(t *testing.T) {
	old := osReleasePath
	osReleasePath = filepath.Join(t.TempDir(), "missing")
	t.Cleanup(func() { osReleasePath = old })

	var f Facts
	gatherOS(&f)
	assert.Equal(t, "Linux", f.OSName)
	assert.Empty(t, f.OSVersion)
}
