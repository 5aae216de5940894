// Package sysinfo emits facts about the machine running the build.
package sysinfo

import (
	"context"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/milan604/vergen/pkg/vergen"
)

// Sysinfo configures the VERGEN_SYSINFO_* keys. Every value depends on the
// build host, so idempotent output replaces all of them.
type Sysinfo struct {
	Name         bool
	OSVersion    bool
	User         bool
	Memory       bool
	CPUVendor    bool
	CPUCoreCount bool
	CPUName      bool
	CPUBrand     bool
	CPUFrequency bool

	// Gather reads host facts; nil reads the current host.
	Gather func(context.Context) Facts
}

// AllSysinfo enables every sysinfo key.
func AllSysinfo() *Sysinfo {
	return &Sysinfo{
		Name:         true,
		OSVersion:    true,
		User:         true,
		Memory:       true,
		CPUVendor:    true,
		CPUCoreCount: true,
		CPUName:      true,
		CPUBrand:     true,
		CPUFrequency: true,
	}
}

type field struct {
	on    bool
	key   vergen.Key
	value string
}

func (s *Sysinfo) fields(f Facts) []field {
	var memory, cores, freq string
	if f.TotalMemory > 0 {
		memory = humanize.IBytes(f.TotalMemory)
	}
	if f.CPUCores > 0 {
		cores = strconv.Itoa(f.CPUCores)
	}
	if f.CPUFrequencyMHz > 0 {
		freq = strconv.FormatInt(f.CPUFrequencyMHz, 10)
	}
	return []field{
		{s.Name, vergen.SysinfoName, f.OSName},
		{s.OSVersion, vergen.SysinfoOSVersion, f.OSVersion},
		{s.User, vergen.SysinfoUser, f.User},
		{s.Memory, vergen.SysinfoMemory, memory},
		{s.CPUVendor, vergen.SysinfoCPUVendor, f.CPUVendor},
		{s.CPUCoreCount, vergen.SysinfoCPUCoreCount, cores},
		{s.CPUName, vergen.SysinfoCPUName, f.CPUNames()},
		{s.CPUBrand, vergen.SysinfoCPUBrand, f.CPUBrand},
		{s.CPUFrequency, vergen.SysinfoCPUFrequency, freq},
	}
}

func (s *Sysinfo) enabled() bool {
	for _, fl := range s.fields(Facts{}) {
		if fl.on {
			return true
		}
	}
	return false
}

// AddEntries implements vergen.Provider. It never fails: anything the host
// does not report gets a default entry.
func (s *Sysinfo) AddEntries(ctx context.Context, idempotent bool, e *vergen.Entries) error {
	if !s.enabled() {
		return nil
	}
	var facts Facts
	if !idempotent {
		gather := s.Gather
		if gather == nil {
			gather = Gather
		}
		facts = gather(ctx)
	}
	for _, fl := range s.fields(facts) {
		switch {
		case !fl.on:
		case e.AddOverride(fl.key):
		case idempotent || fl.value == "":
			e.AddDefaultEntry(fl.key)
		default:
			e.AddEntry(fl.key, fl.value)
		}
	}
	return nil
}

// AddDefaultEntries implements vergen.Provider.
func (s *Sysinfo) AddDefaultEntries(cfg vergen.DefaultConfig, e *vergen.Entries) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	for _, fl := range s.fields(Facts{}) {
		if fl.on {
			e.AddDefaultEntry(fl.key)
		}
	}
	return nil
}
