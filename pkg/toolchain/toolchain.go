// Package toolchain emits facts about the Go toolchain doing the build.
package toolchain

import (
	"context"
	"fmt"
	"os"

	"github.com/milan604/vergen/internal/goenv"
	"github.com/milan604/vergen/pkg/utils"
	"github.com/milan604/vergen/pkg/vergen"
)

// Toolchain configures the VERGEN_GO_* keys.
type Toolchain struct {
	Channel    bool
	CommitDate bool
	CommitHash bool
	HostTriple bool
	Version    bool
	Semver     bool

	// GoEnv reads go env variables; nil runs the go command.
	GoEnv goenv.Func
}

// AllToolchain enables every toolchain key.
func AllToolchain() *Toolchain {
	return &Toolchain{
		Channel:    true,
		CommitDate: true,
		CommitHash: true,
		HostTriple: true,
		Version:    true,
		Semver:     true,
	}
}

func (tc *Toolchain) enabled() bool {
	return tc.Channel || tc.CommitDate || tc.CommitHash || tc.HostTriple || tc.Version || tc.Semver
}

func (tc *Toolchain) goEnv() goenv.Func {
	if tc.GoEnv != nil {
		return tc.GoEnv
	}
	return goenv.Read
}

// AddEntries implements vergen.Provider. Toolchain values are deterministic,
// so idempotence does not apply.
func (tc *Toolchain) AddEntries(ctx context.Context, _ bool, e *vergen.Entries) error {
	if !tc.enabled() {
		return nil
	}
	values, err := tc.goEnv()(ctx, "GOVERSION", "GOHOSTOS", "GOHOSTARCH")
	if err != nil {
		return fmt.Errorf("read toolchain: %w", err)
	}
	info, err := Parse(values["GOVERSION"])
	if err != nil {
		return err
	}

	if tc.Channel {
		add(e, vergen.GoChannel, string(info.Channel), true)
	}
	if tc.CommitDate {
		add(e, vergen.GoCommitDate, utils.FormatDate(info.CommitDate), !info.CommitDate.IsZero())
	}
	if tc.CommitHash {
		add(e, vergen.GoCommitHash, info.CommitHash, info.CommitHash != "")
	}
	if tc.HostTriple {
		hostOS, hostArch := values["GOHOSTOS"], values["GOHOSTARCH"]
		add(e, vergen.GoHostTriple, hostOS+"/"+hostArch, hostOS != "" && hostArch != "")
	}
	if tc.Version {
		add(e, vergen.GoVersion, info.Raw, true)
	}
	if tc.Semver {
		add(e, vergen.GoSemver, info.Semver, true)
	}
	return nil
}

// add records value unless an override is set or the value is unknown, in
// which case the key gets its default entry.
func add(e *vergen.Entries, key vergen.Key, value string, known bool) {
	if _, set := os.LookupEnv(key.Name()); set || !known {
		e.AddDefaultEntry(key)
		return
	}
	e.AddEntry(key, value)
}

// AddDefaultEntries implements vergen.Provider.
func (tc *Toolchain) AddDefaultEntries(cfg vergen.DefaultConfig, e *vergen.Entries) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	for _, k := range []struct {
		on  bool
		key vergen.Key
	}{
		{tc.Channel, vergen.GoChannel},
		{tc.CommitDate, vergen.GoCommitDate},
		{tc.CommitHash, vergen.GoCommitHash},
		{tc.HostTriple, vergen.GoHostTriple},
		{tc.Version, vergen.GoVersion},
		{tc.Semver, vergen.GoSemver},
	} {
		if k.on {
			e.AddDefaultEntry(k.key)
		}
	}
	return nil
}
