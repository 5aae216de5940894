package toolchain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// Channel is the release channel of a toolchain.
type Channel string

const (
	Stable Channel = "stable"
	RC     Channel = "rc"
	Beta   Channel = "beta"
	Devel  Channel = "devel"
)

// Info is a parsed GOVERSION.
type Info struct {
	Raw     string
	Channel Channel
	// Semver has no leading "v".
	Semver string
	// CommitHash and CommitDate are only known for devel toolchains.
	CommitHash string
	CommitDate time.Time
}

var (
	releaseRE = regexp.MustCompile(`^go(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:(rc|beta)(\d+))?$`)
	develRE   = regexp.MustCompile(`^devel (?:go(\d+)\.(\d+)-)?\+?([0-9a-f]+) (.+)$`)
)

const develDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

// Parse understands release (go1.22.3), pre-release (go1.23rc1, go1.21beta1)
// and devel (devel go1.24-abcdef0 Tue Jan 2 15:04:05 2024 +0000) versions.
func Parse(goversion string) (Info, error) {
	raw := strings.TrimSpace(goversion)
	info := Info{Raw: raw}

	if m := develRE.FindStringSubmatch(raw); m != nil {
		info.Channel = Devel
		info.Semver = fmt.Sprintf("%s.%s.0-devel", orZero(m[1]), orZero(m[2]))
		info.CommitHash = m[3]
		if ts, err := time.Parse(develDateLayout, strings.TrimSpace(m[4])); err == nil {
			info.CommitDate = ts.UTC()
		}
		return info, validate(info)
	}

	// Experiments follow the version after a space: "go1.22.3 X:nocoverageredesign".
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return info, fmt.Errorf("empty go version")
	}
	m := releaseRE.FindStringSubmatch(fields[0])
	if m == nil {
		return info, fmt.Errorf("unrecognized go version %q", raw)
	}
	info.Semver = fmt.Sprintf("%s.%s.%s", m[1], orZero(m[2]), orZero(m[3]))
	switch m[4] {
	case "rc":
		info.Channel = RC
		info.Semver += "-rc" + m[5]
	case "beta":
		info.Channel = Beta
		info.Semver += "-beta" + m[5]
	default:
		info.Channel = Stable
	}
	return info, validate(info)
}

func validate(info Info) error {
	if !semver.IsValid("v" + info.Semver) {
		return fmt.Errorf("go version %q does not map to semver (got %q)", info.Raw, info.Semver)
	}
	return nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
