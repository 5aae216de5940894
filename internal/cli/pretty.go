package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/milan604/vergen/pkg/apperr"
	"github.com/milan604/vergen/pkg/pretty"
	"github.com/milan604/vergen/pkg/validator"
)

type prettyOptions struct {
	Instructions string   `mapstructure:"instructions"`
	EnvFile      string   `mapstructure:"env-file" validate:"excluded_with=Instructions"`
	Extra        []string `mapstructure:"extra"`
	Output       string   `mapstructure:"output" validate:"oneof=text json yaml prometheus"`
	Prefix       string   `mapstructure:"prefix"`
	Suffix       string   `mapstructure:"suffix"`
	Filter       []string `mapstructure:"filter"`
	NoCategory   bool     `mapstructure:"no-category"`
	Flatten      bool     `mapstructure:"flatten"`
	Log          bool     `mapstructure:"log"`
	NoColor      bool     `mapstructure:"no-color"`
}

func newPrettyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pretty",
		Short: "Display captured build metadata",
		Long: `Display captured build metadata.

Values come from an instruction stream (--instructions, "-" for stdin), a
dotenv file written by "emit --format env" (--env-file), or the process
environment.`,
		Example: `  vergen emit | vergen pretty --instructions -
  vergen pretty --env-file build.env --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			var opts prettyOptions
			if err := cfg.Decode("", &opts); err != nil {
				return apperr.New(apperr.ErrorCodeInvalidConfig).Wrap(err)
			}
			opts.Output = strings.ToLower(opts.Output)
			if err := validator.New().Struct(opts); err != nil {
				return err
			}
			return a.runPretty(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.String("instructions", "", "read vergen:env lines from this file, - for stdin")
	f.String("env-file", "", "read values from a dotenv file")
	f.StringSlice("extra", nil, "extra environment variables to show alongside VERGEN_* keys")
	f.String("output", "text", "output: text, json, yaml, prometheus")
	f.String("prefix", "", "banner printed before the values")
	f.String("suffix", "", "banner printed after the values")
	f.StringSlice("filter", nil, "keys to hide")
	f.Bool("no-category", false, "hide the category column")
	f.Bool("flatten", false, "serialize values only, when there is no banner")
	f.Bool("log", false, "also log every value")
	return cmd
}

func (a *app) readEnv(cmd *cobra.Command, opts prettyOptions) (pretty.Env, error) {
	switch {
	case opts.Instructions == "-":
		return pretty.ParseInstructions(cmd.InOrStdin())
	case opts.Instructions != "":
		f, err := os.Open(opts.Instructions)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return pretty.ParseInstructions(f)
	case opts.EnvFile != "":
		return pretty.EnvFromFile(opts.EnvFile)
	}
	return pretty.EnvFromOS(opts.Extra...), nil
}

func (o prettyOptions) prettyOptions() []pretty.Option {
	var popts []pretty.Option
	if o.Prefix != "" {
		popts = append(popts, pretty.WithPrefix(pretty.Banner{Lines: strings.Split(o.Prefix, `\n`)}))
	}
	if o.Suffix != "" {
		popts = append(popts, pretty.WithSuffix(pretty.Banner{Lines: strings.Split(o.Suffix, `\n`)}))
	}
	if len(o.Filter) > 0 {
		popts = append(popts, pretty.WithFilter(o.Filter...))
	}
	if o.NoCategory {
		popts = append(popts, pretty.WithoutCategory())
	}
	if o.Flatten {
		popts = append(popts, pretty.WithFlatten())
	}
	if o.NoColor {
		popts = append(popts, pretty.WithoutColor())
	}
	return popts
}

func (a *app) runPretty(cmd *cobra.Command, opts prettyOptions) error {
	env, err := a.readEnv(cmd, opts)
	if err != nil {
		return apperr.New(apperr.ErrorCodeInvalidConfig).WithMessage("unable to read build metadata").Wrap(err)
	}
	p := pretty.New(env, opts.prettyOptions()...)
	if opts.Log {
		p.Trace(a.log.Desugar())
	}

	switch opts.Output {
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(p)
	case "yaml":
		enc := yaml.NewEncoder(a.stdout)
		if err = enc.Encode(p); err == nil {
			err = enc.Close()
		}
	case "prometheus":
		err = writeMetrics(a.stdout, env)
	default:
		err = p.Display(a.stdout)
	}
	if err != nil {
		return apperr.New(apperr.ErrorCodeOutputFailed).Wrap(err)
	}
	return nil
}

// writeMetrics renders the build info gauge in the text exposition format.
func writeMetrics(w io.Writer, env pretty.Env) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(pretty.NewCollector(env)); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
