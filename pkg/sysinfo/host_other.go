//go:build !linux && !darwin

package sysinfo

import "runtime"

func gatherOS(f *Facts) {
	f.OSName = runtime.GOOS
}
