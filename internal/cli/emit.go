package cli

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/milan604/vergen/pkg/apperr"
	"github.com/milan604/vergen/pkg/build"
	"github.com/milan604/vergen/pkg/config"
	"github.com/milan604/vergen/pkg/git"
	"github.com/milan604/vergen/pkg/gobuild"
	"github.com/milan604/vergen/pkg/sysinfo"
	"github.com/milan604/vergen/pkg/toolchain"
	"github.com/milan604/vergen/pkg/validator"
	"github.com/milan604/vergen/pkg/vergen"
)

type emitOptions struct {
	Format      string `mapstructure:"format" validate:"oneof=instructions env ldflags go json yaml"`
	Package     string `mapstructure:"package" validate:"required_if=Format go,required_if=Format ldflags"`
	Output      string `mapstructure:"output"`
	BuildFile   string `mapstructure:"build-file"`
	Idempotent  bool   `mapstructure:"idempotent"`
	FailOnError bool   `mapstructure:"fail-on-error"`
	Quiet       bool   `mapstructure:"quiet"`

	Build     bool `mapstructure:"build"`
	GoBuild   bool `mapstructure:"gobuild"`
	Toolchain bool `mapstructure:"toolchain"`
	Sysinfo   bool `mapstructure:"sysinfo"`
	Git       bool `mapstructure:"git"`
	UseLocal  bool `mapstructure:"use-local"`

	GitBackend     string `mapstructure:"git-backend" validate:"oneof=cli gogit"`
	GitRepo        string `mapstructure:"git-repo"`
	DescribeTags   bool   `mapstructure:"describe-tags"`
	DescribeDirty  bool   `mapstructure:"describe-dirty"`
	DescribeMatch  string `mapstructure:"describe-match"`
	SHAShort       bool   `mapstructure:"sha-short"`
	DirtyUntracked bool   `mapstructure:"dirty-untracked"`

	DepName string `mapstructure:"dep-name" validate:"regexp"`
	DepKind string `mapstructure:"dep-kind" validate:"oneof=all direct indirect"`
	ModFile string `mapstructure:"modfile"`

	Custom map[string]string `mapstructure:"-"`
}

func newEmitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Gather build metadata and write it in the selected format",
		Long: `Gather build metadata and write it in the selected format.

With no provider flag every provider is enabled. Options are read from flags,
VERGEN_* environment variables (VERGEN_FORMAT, VERGEN_FAIL_ON_ERROR, ...) and
vergen.yaml. Setting VERGEN_IDEMPOTENT to any value enables idempotent output.`,
		Example: `  //go:generate vergen emit --format go --package main --output vergen_gen.go
  go build -ldflags "$(vergen emit --format ldflags --package main --git --build)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd, config.WithBindEnv("build-file", "VERGEN_BUILD_FILE", "GOFILE"))
			if err != nil {
				return err
			}
			opts, err := readEmitOptions(cfg)
			if err != nil {
				return err
			}
			return a.runEmit(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.String("format", string(vergen.FormatInstructions), "output format: instructions, env, ldflags, go, json, yaml")
	f.String("package", "", "package name (go) or import path (ldflags)")
	f.StringP("output", "o", "", "write to this file atomically instead of stdout")
	f.String("build-file", "", "file reported as a rerun trigger (default $GOFILE)")
	f.Bool("idempotent", false, "replace non-deterministic values with VERGEN_IDEMPOTENT_OUTPUT")
	f.Bool("fail-on-error", false, "fail instead of writing default values when a provider fails")
	f.Bool("quiet", false, "suppress warnings")

	f.Bool("build", false, "emit VERGEN_BUILD_* keys")
	f.Bool("gobuild", false, "emit VERGEN_GOBUILD_* keys")
	f.Bool("toolchain", false, "emit VERGEN_GO_* keys")
	f.Bool("sysinfo", false, "emit VERGEN_SYSINFO_* keys")
	f.Bool("git", false, "emit VERGEN_GIT_* keys")
	f.Bool("use-local", false, "format build and commit times in the local time zone")

	f.String("git-backend", "cli", "git implementation: cli or gogit")
	f.String("git-repo", "", "repository path (default: working directory)")
	f.Bool("describe-tags", false, "let describe use lightweight tags")
	f.Bool("describe-dirty", false, "append -dirty to describe when the work tree has changes")
	f.String("describe-match", "", "only describe with tags matching this glob")
	f.Bool("sha-short", false, "emit the abbreviated commit SHA")
	f.Bool("dirty-untracked", false, "count untracked files as dirty")

	f.String("dep-name", "", "only report dependencies whose module path matches this regexp")
	f.String("dep-kind", "all", "dependencies to report: all, direct, indirect")
	f.String("modfile", "", "go.mod to read dependencies from (default: GOMOD)")

	f.StringArray("custom", nil, "extra KEY=VALUE entry, repeatable")
	return cmd
}

func readEmitOptions(cfg *config.Config) (emitOptions, error) {
	opts := emitOptions{
		Format:         strings.ToLower(cfg.GetStringD("format", string(vergen.FormatInstructions))),
		Package:        cfg.GetString("package"),
		Output:         cfg.GetString("output"),
		BuildFile:      cfg.GetString("build-file"),
		Idempotent:     cfg.GetBool("idempotent"),
		FailOnError:    cfg.GetBool("fail-on-error"),
		Quiet:          cfg.GetBool("quiet"),
		Build:          cfg.GetBool("build"),
		GoBuild:        cfg.GetBool("gobuild"),
		Toolchain:      cfg.GetBool("toolchain"),
		Sysinfo:        cfg.GetBool("sysinfo"),
		Git:            cfg.GetBool("git"),
		UseLocal:       cfg.GetBool("use-local"),
		GitBackend:     strings.ToLower(cfg.GetStringD("git-backend", "cli")),
		GitRepo:        cfg.GetString("git-repo"),
		DescribeTags:   cfg.GetBool("describe-tags"),
		DescribeDirty:  cfg.GetBool("describe-dirty"),
		DescribeMatch:  cfg.GetString("describe-match"),
		SHAShort:       cfg.GetBool("sha-short"),
		DirtyUntracked: cfg.GetBool("dirty-untracked"),
		DepName:        cfg.GetString("dep-name"),
		DepKind:        strings.ToLower(cfg.GetStringD("dep-kind", "all")),
		ModFile:        cfg.GetString("modfile"),
	}
	if err := validator.New().Struct(opts); err != nil {
		return opts, err
	}

	custom, err := parseCustom(cfg.GetStringSlice("custom"))
	if err != nil {
		return opts, err
	}
	opts.Custom = custom
	return opts, nil
}

func parseCustom(pairs []string) (map[string]string, error) {
	custom := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperr.Newf(apperr.ErrorCodeInvalidConfig, "invalid custom entry %q", pair).
				AddSuggestion("custom", "use KEY=VALUE")
		}
		custom[key] = value
	}
	return custom, nil
}

func (o emitOptions) anyProvider() bool {
	return o.Build || o.GoBuild || o.Toolchain || o.Sysinfo || o.Git
}

func (o emitOptions) providers() ([]vergen.Provider, error) {
	all := !o.anyProvider()
	var ps []vergen.Provider

	if all || o.Build {
		b := build.AllBuild()
		b.UseLocal = o.UseLocal
		ps = append(ps, b)
	}
	if all || o.GoBuild {
		g := gobuild.AllGoBuild()
		kind, err := gobuild.ParseDepKind(o.DepKind)
		if err != nil {
			return nil, apperr.New(apperr.ErrorCodeInvalidConfig).Wrap(err)
		}
		g.DepKindFilter = kind
		g.NameFilter = o.DepName
		g.ModFile = o.ModFile
		ps = append(ps, g)
	}
	if all || o.Git {
		g := git.AllGit()
		g.DescribeTags = o.DescribeTags
		g.DescribeDirty = o.DescribeDirty
		g.DescribeMatch = o.DescribeMatch
		g.SHAShort = o.SHAShort
		g.DirtyIncludeUntracked = o.DirtyUntracked
		g.UseLocal = o.UseLocal
		g.RepoPath = o.GitRepo
		if o.GitBackend == "gogit" {
			g.Backend = git.GoGit{}
		}
		ps = append(ps, g)
	}
	if all || o.Toolchain {
		ps = append(ps, toolchain.AllToolchain())
	}
	if all || o.Sysinfo {
		ps = append(ps, sysinfo.AllSysinfo())
	}
	return ps, nil
}

func (a *app) emitter(opts emitOptions) *vergen.Emitter {
	e := vergen.New().
		WithFormat(vergen.Format(opts.Format)).
		WithPackage(opts.Package).
		WithLogger(a.log)
	if opts.Idempotent {
		e.Idempotent()
	}
	if opts.FailOnError {
		e.FailOnError()
	}
	if opts.Quiet {
		e.Quiet()
	}
	if opts.BuildFile != "" {
		e.CustomBuildFile(opts.BuildFile)
	}
	return e
}

func (a *app) runEmit(ctx context.Context, opts emitOptions) error {
	providers, err := opts.providers()
	if err != nil {
		return err
	}

	e := a.emitter(opts)
	for _, p := range providers {
		if err := e.AddInstructions(ctx, p); err != nil {
			return err
		}
	}
	if len(opts.Custom) > 0 {
		if err := e.AddCustomInstructions(ctx, staticEntries(opts.Custom)); err != nil {
			return err
		}
	}
	a.log.DebugF("gathered %d keys, %d idempotent", len(e.Entries().Env), e.Entries().CountIdempotent())

	if opts.Output == "" {
		return e.EmitTo(a.stdout)
	}
	var buf bytes.Buffer
	if err := e.EmitTo(&buf); err != nil {
		return err
	}
	if err := renameio.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
		return apperr.New(apperr.ErrorCodeOutputFailed).Wrap(err)
	}
	a.log.InfoF("wrote %s", opts.Output)
	return nil
}

// staticEntries is a custom provider for --custom values.
type staticEntries map[string]string

func (s staticEntries) AddCalculatedEntries(_ context.Context, _ bool, env map[string]string, _ *vergen.Entries) error {
	for k, v := range s {
		env[k] = v
	}
	return nil
}

func (s staticEntries) AddDefaultEntries(cfg vergen.DefaultConfig, env map[string]string, _ *vergen.Entries) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	for k := range s {
		env[k] = vergen.Placeholder
	}
	return nil
}
