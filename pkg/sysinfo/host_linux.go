package sysinfo

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/milan604/vergen/pkg/utils"
)

var osReleasePath = "/etc/os-release"

func gatherOS(f *Facts) {
	var sysname string
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		sysname = unix.ByteSliceToString(uts.Sysname[:])
	}

	var rel osRelease
	if file, err := os.Open(osReleasePath); err == nil {
		rel, _ = parseOSRelease(file)
		file.Close()
	}
	f.OSName = utils.Coalesce(rel.Name, sysname)
	if rel.VersionID != "" {
		f.OSVersion = utils.JoinNonEmpty(" ", sysname, rel.VersionID, rel.Name)
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err == nil {
		f.TotalMemory = uint64(info.Totalram) * uint64(info.Unit)
	}
}
