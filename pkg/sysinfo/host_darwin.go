package sysinfo

import (
	"golang.org/x/sys/unix"

	"github.com/milan604/vergen/pkg/utils"
)

func gatherOS(f *Facts) {
	f.OSName = "Darwin"
	if version, err := unix.Sysctl("kern.osproductversion"); err == nil {
		f.OSVersion = utils.JoinNonEmpty(" ", "macOS", version)
	}
	if mem, err := unix.SysctlUint64("hw.memsize"); err == nil {
		f.TotalMemory = mem
	}
}
