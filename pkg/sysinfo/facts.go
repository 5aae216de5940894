package sysinfo

import (
	"context"
	"fmt"
	"io"
	"os/user"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/klauspost/cpuid/v2"
)

// Facts describes the build host. Zero values mean unknown.
type Facts struct {
	OSName      string
	OSVersion   string
	User        string
	TotalMemory uint64

	CPUVendor string
	CPUBrand  string
	CPUCores  int
	// CPUFrequencyMHz is the base frequency.
	CPUFrequencyMHz int64
	// CPUCount is the number of logical CPUs.
	CPUCount int
}

// CPUNames lists logical CPUs the way the kernel names them.
func (f Facts) CPUNames() string {
	names := make([]string, f.CPUCount)
	for i := range names {
		names[i] = fmt.Sprintf("cpu%d", i)
	}
	return strings.Join(names, ",")
}

// Gather reads the facts of the current host.
func Gather(_ context.Context) Facts {
	f := Facts{
		CPUVendor: strings.TrimSpace(cpuid.CPU.VendorString),
		CPUBrand:  strings.TrimSpace(cpuid.CPU.BrandName),
		CPUCores:  cpuid.CPU.PhysicalCores,
		CPUCount:  runtime.NumCPU(),
	}
	if cpuid.CPU.Hz > 0 {
		f.CPUFrequencyMHz = cpuid.CPU.Hz / 1_000_000
	}
	if u, err := user.Current(); err == nil {
		f.User = u.Username
	}
	gatherOS(&f)
	return f
}

// osRelease holds the os-release(5) fields used for naming the OS.
type osRelease struct {
	Name      string
	VersionID string
}

func parseOSRelease(r io.Reader) (osRelease, error) {
	values, err := godotenv.Parse(r)
	if err != nil {
		return osRelease{}, err
	}
	return osRelease{Name: values["NAME"], VersionID: values["VERSION_ID"]}, nil
}
