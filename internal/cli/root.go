// Package cli implements the vergen command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/milan604/vergen/pkg/apperr"
	"github.com/milan604/vergen/pkg/config"
	"github.com/milan604/vergen/pkg/logger"
)

// app carries what every subcommand shares.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	dotenvFile string
	logLevel   string
	noColor    bool

	log logger.LogManager
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, args, os.Stdin, stdout, stderr)
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, log: logger.NewNop()}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	_ = a.log.Sync()
	if err != nil {
		report(stderr, err)
	}
	return apperr.ExitCode(err)
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "vergen: %v\n", err)
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		for _, s := range ae.Suggestions {
			fmt.Fprintf(w, "  %s: %s\n", s.Field, s.Message)
		}
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vergen",
		Short:         "Capture build metadata for Go programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.NewLogger(logger.LoggerOptions{
				Level:   a.logLevel,
				Writer:  a.stderr,
				NoColor: a.noColor,
			})
			if err != nil {
				return apperr.New(apperr.ErrorCodeInvalidConfig).WithMessage("unable to create logger").Wrap(err)
			}
			a.log = log
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: vergen.yaml in the working directory)")
	flags.StringVar(&a.dotenvFile, "dotenv", "", "dotenv file of VERGEN_* option variables")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newEmitCmd(a),
		newPrettyCmd(a),
		newKeysCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// loadConfig layers vergen.yaml, the --dotenv file, VERGEN_* variables and
// the command's flags.
func (a *app) loadConfig(cmd *cobra.Command, extra ...config.Option) (*config.Config, error) {
	opts := []config.Option{
		config.WithConfigNamePaths("vergen", "."),
		config.WithFile(a.configFile),
		config.WithDotEnv(a.dotenvFile, "VERGEN", true),
		config.WithEnv("VERGEN"),
	}
	opts = append(opts, extra...)
	opts = append(opts, config.WithPFlags(cmd.Flags()))

	cfg, err := config.New(opts...)
	if err != nil {
		return nil, apperr.New(apperr.ErrorCodeInvalidConfig).WithMessage("unable to load configuration").Wrap(err)
	}
	return cfg, nil
}
