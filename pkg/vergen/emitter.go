package vergen

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"

	"github.com/milan604/vergen/pkg/apperr"
	"github.com/milan604/vergen/pkg/logger"
)

// Emitter runs providers and writes the resulting build instructions.
type Emitter struct {
	idempotent  bool
	failOnError bool
	quiet       bool
	buildFile   string
	format      Format
	pkg         string
	log         logger.LogManager

	entries *Entries
}

// New returns an emitter. Idempotent output is enabled when VERGEN_IDEMPOTENT
// is set, whatever its value. The build file defaults to $GOFILE, which go
// generate sets to the file carrying the directive.
func New() *Emitter {
	_, idempotent := os.LookupEnv(IdempotentEnv)
	return &Emitter{
		idempotent: idempotent,
		buildFile:  os.Getenv("GOFILE"),
		format:     FormatInstructions,
		log:        logger.NewNop(),
		entries:    NewEntries(),
	}
}

// Idempotent replaces non-deterministic values with the placeholder.
func (e *Emitter) Idempotent() *Emitter {
	e.idempotent = true
	return e
}

// FailOnError makes provider failures fatal instead of defaulting.
func (e *Emitter) FailOnError() *Emitter {
	e.failOnError = true
	return e
}

// Quiet suppresses warnings.
func (e *Emitter) Quiet() *Emitter {
	e.quiet = true
	return e
}

// CustomBuildFile sets the file reported as a rerun trigger.
func (e *Emitter) CustomBuildFile(path string) *Emitter {
	e.buildFile = path
	return e
}

// WithFormat selects the output format.
func (e *Emitter) WithFormat(f Format) *Emitter {
	e.format = f
	return e
}

// WithPackage sets the Go package name (go format) or import path (ldflags format).
func (e *Emitter) WithPackage(pkg string) *Emitter {
	e.pkg = pkg
	return e
}

// WithLogger sets where warnings go for formats that cannot carry them.
func (e *Emitter) WithLogger(log logger.LogManager) *Emitter {
	if log != nil {
		e.log = log
	}
	return e
}

// IsIdempotent reports whether idempotent output is enabled.
func (e *Emitter) IsIdempotent() bool { return e.idempotent }

// AddInstructions runs p. When p fails its default entries are recorded
// instead, unless the emitter fails on error.
func (e *Emitter) AddInstructions(ctx context.Context, p Provider) error {
	err := p.AddEntries(ctx, e.idempotent, e.entries)
	if err == nil {
		return nil
	}
	e.log.DebugF("provider %T failed: %v", p, err)
	cfg := DefaultConfig{FailOnError: e.failOnError, Idempotent: e.idempotent, Err: err}
	if derr := p.AddDefaultEntries(cfg, e.entries); derr != nil {
		return apperr.New(apperr.ErrorCodeProviderFailed).Wrap(derr)
	}
	return nil
}

// AddCustomInstructions runs a custom provider. Its values are merged only
// after it (or its default path) succeeds. Values for built-in key names are
// dropped with a warning.
func (e *Emitter) AddCustomInstructions(ctx context.Context, p CustomProvider) error {
	env := make(map[string]string)
	err := p.AddCalculatedEntries(ctx, e.idempotent, env, e.entries)
	if err != nil {
		e.log.DebugF("custom provider %T failed: %v", p, err)
		env = make(map[string]string)
		cfg := DefaultConfig{FailOnError: e.failOnError, Idempotent: e.idempotent, Err: err}
		if derr := p.AddDefaultEntries(cfg, env, e.entries); derr != nil {
			return apperr.New(apperr.ErrorCodeProviderFailed).Wrap(derr)
		}
	}
	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		// Built-in keys keep a single value owned by their provider.
		if _, ok := KeyFromName(k); ok {
			e.log.DebugF("custom provider %T set built-in key %s", p, k)
			e.entries.AddWarning("%s is a built-in key, custom value ignored", k)
			continue
		}
		e.entries.AddCustomEntry(k, env[k])
	}
	return nil
}

// Entries exposes what has been gathered so far.
func (e *Emitter) Entries() *Entries { return e.entries }

// Emit writes the instructions to stdout.
func (e *Emitter) Emit() error {
	return e.EmitTo(os.Stdout)
}

// EmitAndSet writes the instructions to stdout and then sets every standard
// key that is not already present in the process environment.
func (e *Emitter) EmitAndSet() error {
	if err := e.Emit(); err != nil {
		return err
	}
	for _, k := range e.entries.Keys() {
		if _, ok := os.LookupEnv(k.Name()); ok {
			continue
		}
		if err := os.Setenv(k.Name(), e.entries.Env[k]); err != nil {
			return apperr.New(apperr.ErrorCodeOutputFailed).Wrap(err)
		}
	}
	return nil
}

// EmitTo writes the instructions to w in the configured format.
func (e *Emitter) EmitTo(w io.Writer) error {
	writer, err := e.writerFor(e.format)
	if err != nil {
		return err
	}
	if err := writer(w); err != nil {
		var appErr *apperr.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperr.New(apperr.ErrorCodeOutputFailed).Wrap(err)
	}
	return nil
}
