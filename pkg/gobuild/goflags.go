package gobuild

import (
	"strings"

	"github.com/milan604/vergen/pkg/utils"
)

// GoFlags is what the build reads from GOFLAGS.
type GoFlags struct {
	// Debug is set when -gcflags disables optimizations (-N).
	Debug bool
	Tags  []string
}

// ParseGoFlags reads a GOFLAGS value. Every flag in GOFLAGS is
// self-contained, so values always follow an "=".
func ParseGoFlags(goflags string) GoFlags {
	var out GoFlags
	for _, field := range strings.Fields(goflags) {
		name, value, ok := strings.Cut(strings.TrimLeft(field, "-"), "=")
		if !ok {
			continue
		}
		switch name {
		case "tags":
			out.Tags = append(out.Tags, utils.SplitAndTrim(value, ",", true)...)
		case "gcflags":
			// Per-package patterns look like "pkg=-N -l"; only the flags matter.
			if i := strings.LastIndex(value, "="); i >= 0 {
				value = value[i+1:]
			}
			for _, f := range strings.Fields(strings.Trim(value, `'"`)) {
				if f == "-N" {
					out.Debug = true
				}
			}
		}
	}
	return out
}
