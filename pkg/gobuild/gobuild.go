// Package gobuild emits how the go command is configured for the build and
// which modules the build requires.
package gobuild

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/milan604/vergen/internal/goenv"
	"github.com/milan604/vergen/pkg/utils"
	"github.com/milan604/vergen/pkg/vergen"
)

// DepKind selects which go.mod requirements are reported.
type DepKind int

const (
	AllDeps DepKind = iota
	DirectDeps
	IndirectDeps
)

// ParseDepKind maps "all", "direct" and "indirect" to a DepKind.
func ParseDepKind(s string) (DepKind, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return AllDeps, nil
	case "direct":
		return DirectDeps, nil
	case "indirect":
		return IndirectDeps, nil
	}
	return AllDeps, fmt.Errorf("unknown dependency kind %q", s)
}

// GoBuild configures the VERGEN_GOBUILD_* keys.
type GoBuild struct {
	Debug        bool
	Tags         bool
	CgoEnabled   bool
	TargetTriple bool
	Dependencies bool

	// NameFilter keeps dependencies whose module path matches the regexp.
	NameFilter string
	// DepKindFilter keeps direct or indirect requirements only.
	DepKindFilter DepKind
	// ModFile overrides the go.mod reported by GOMOD.
	ModFile string

	GoEnv goenv.Func
}

// AllGoBuild enables every gobuild key.
func AllGoBuild() *GoBuild {
	return &GoBuild{Debug: true, Tags: true, CgoEnabled: true, TargetTriple: true, Dependencies: true}
}

func (g *GoBuild) enabled() bool {
	return g.Debug || g.Tags || g.CgoEnabled || g.TargetTriple || g.Dependencies
}

func (g *GoBuild) goEnv() goenv.Func {
	if g.GoEnv != nil {
		return g.GoEnv
	}
	return goenv.Read
}

// AddEntries implements vergen.Provider. Nothing here depends on the clock,
// so idempotence does not apply.
func (g *GoBuild) AddEntries(ctx context.Context, _ bool, e *vergen.Entries) error {
	if !g.enabled() {
		return nil
	}
	values, err := g.goEnv()(ctx, "GOOS", "GOARCH", "CGO_ENABLED", "GOFLAGS", "GOMOD")
	if err != nil {
		return fmt.Errorf("read go env: %w", err)
	}
	flags := ParseGoFlags(values["GOFLAGS"])

	if g.Debug && !e.AddOverride(vergen.GoBuildDebug) {
		e.AddEntry(vergen.GoBuildDebug, strconv.FormatBool(flags.Debug))
	}
	if g.Tags && !e.AddOverride(vergen.GoBuildTags) {
		e.AddEntry(vergen.GoBuildTags, strings.Join(flags.Tags, ","))
	}
	if g.CgoEnabled && !e.AddOverride(vergen.GoBuildCgoEnabled) {
		e.AddEntry(vergen.GoBuildCgoEnabled, values["CGO_ENABLED"])
	}
	if g.TargetTriple && !e.AddOverride(vergen.GoBuildTargetTriple) {
		e.AddEntry(vergen.GoBuildTargetTriple, values["GOOS"]+"/"+values["GOARCH"])
	}
	if g.Dependencies && !e.AddOverride(vergen.GoBuildDependencies) {
		deps, err := g.dependencies(utils.Coalesce(g.ModFile, values["GOMOD"]))
		if err != nil {
			return err
		}
		if deps != "" {
			e.AddEntry(vergen.GoBuildDependencies, deps)
		}
	}
	return nil
}

func (g *GoBuild) dependencies(path string) (string, error) {
	if path == "" || path == os.DevNull {
		return "", nil
	}
	var filter *regexp.Regexp
	if g.NameFilter != "" {
		re, err := regexp.Compile(g.NameFilter)
		if err != nil {
			return "", fmt.Errorf("dependency name filter: %w", err)
		}
		filter = re
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	mf, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("parse go.mod: %w", err)
	}

	var deps []string
	for _, r := range mf.Require {
		switch {
		case g.DepKindFilter == DirectDeps && r.Indirect:
			continue
		case g.DepKindFilter == IndirectDeps && !r.Indirect:
			continue
		case filter != nil && !filter.MatchString(r.Mod.Path):
			continue
		}
		deps = append(deps, r.Mod.Path+" "+r.Mod.Version)
	}
	return strings.Join(deps, ","), nil
}

// AddDefaultEntries implements vergen.Provider.
func (g *GoBuild) AddDefaultEntries(cfg vergen.DefaultConfig, e *vergen.Entries) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	if g.Debug {
		e.AddDefaultEntry(vergen.GoBuildDebug)
	}
	if g.Tags {
		e.AddDefaultEntry(vergen.GoBuildTags)
	}
	if g.CgoEnabled {
		e.AddDefaultEntry(vergen.GoBuildCgoEnabled)
	}
	if g.TargetTriple {
		e.AddDefaultEntry(vergen.GoBuildTargetTriple)
	}
	if g.Dependencies {
		e.AddDefaultEntry(vergen.GoBuildDependencies)
	}
	return nil
}
