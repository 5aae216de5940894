package vergen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/milan604/vergen/pkg/apperr"
	"github.com/milan604/vergen/pkg/utils"
)

// Format selects how the emitter renders entries.
type Format string

const (
	FormatInstructions Format = "instructions"
	FormatEnv          Format = "env"
	FormatLdflags      Format = "ldflags"
	FormatGo           Format = "go"
	FormatJSON         Format = "json"
	FormatYAML         Format = "yaml"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatInstructions, FormatEnv, FormatLdflags, FormatGo, FormatJSON, FormatYAML}
}

// ParseFormat maps a name to a Format. The empty string selects instructions.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatInstructions, nil
	}
	for _, f := range Formats() {
		if string(f) == strings.ToLower(name) {
			return f, nil
		}
	}
	return "", apperr.Newf(apperr.ErrorCodeInvalidConfig, "unknown output format %q", name).
		AddSuggestion("format", "use one of instructions, env, ldflags, go, json, yaml")
}

func (e *Emitter) writerFor(f Format) (func(io.Writer) error, error) {
	switch f {
	case FormatInstructions, "":
		return e.writeInstructions, nil
	case FormatEnv:
		return e.writeEnv, nil
	case FormatLdflags:
		if e.pkg == "" {
			return nil, apperr.Newf(apperr.ErrorCodeInvalidConfig, "ldflags format needs a package import path").
				AddSuggestion("package", "set the import path of the package holding the variables")
		}
		return e.writeLdflags, nil
	case FormatGo:
		if !token.IsIdentifier(e.pkg) {
			return nil, apperr.Newf(apperr.ErrorCodeInvalidConfig, "go format needs a package name, got %q", e.pkg).
				AddSuggestion("package", "set the name of the generated package")
		}
		return e.writeGo, nil
	case FormatJSON:
		return e.writeJSON, nil
	case FormatYAML:
		return e.writeYAML, nil
	}
	return nil, apperr.Newf(apperr.ErrorCodeInvalidConfig, "unknown output format %q", f)
}

// values returns every standard and custom value keyed by environment name.
func (e *Emitter) values() map[string]string {
	out := make(map[string]string, len(e.entries.Env)+len(e.entries.Custom))
	for k, v := range e.entries.Env {
		out[k.Name()] = utils.StripNewlines(v)
	}
	for k, v := range e.entries.Custom {
		out[k] = utils.StripNewlines(v)
	}
	return out
}

func (e *Emitter) logWarnings() {
	if e.quiet {
		return
	}
	for _, w := range e.entries.Warnings {
		e.log.Warn(utils.StripNewlines(w))
	}
}

func (e *Emitter) writeInstructions(w io.Writer) error {
	var buf bytes.Buffer
	for _, k := range e.entries.Keys() {
		fmt.Fprintf(&buf, "vergen:env=%s=%s\n", k.Name(), utils.StripNewlines(e.entries.Env[k]))
	}
	for _, k := range e.entries.CustomKeys() {
		fmt.Fprintf(&buf, "vergen:env=%s=%s\n", utils.StripNewlines(k), utils.StripNewlines(e.entries.Custom[k]))
	}
	if !e.quiet {
		for _, warning := range e.entries.Warnings {
			fmt.Fprintf(&buf, "vergen:warning=%s\n", utils.StripNewlines(warning))
		}
	}
	for _, path := range e.entries.RerunIfChanged {
		fmt.Fprintf(&buf, "vergen:rerun-if-changed=%s\n", utils.StripNewlines(path))
	}
	if len(e.entries.Env) > 0 || len(e.entries.Warnings) > 0 {
		if e.buildFile != "" {
			fmt.Fprintf(&buf, "vergen:rerun-if-changed=%s\n", utils.StripNewlines(e.buildFile))
		}
		fmt.Fprintf(&buf, "vergen:rerun-if-env-changed=%s\n", IdempotentEnv)
		fmt.Fprintf(&buf, "vergen:rerun-if-env-changed=%s\n", SourceDateEpochEnv)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (e *Emitter) writeEnv(w io.Writer) error {
	e.logWarnings()
	out, err := godotenv.Marshal(e.values())
	if err != nil {
		return err
	}
	if out != "" {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

// writeLdflags renders a single -ldflags argument list of -X assignments.
// Custom keys are only included when they are valid Go identifiers.
func (e *Emitter) writeLdflags(w io.Writer) error {
	e.logWarnings()
	var parts []string
	for _, k := range e.entries.Keys() {
		part, err := ldflag(e.pkg, k.GoName(), e.entries.Env[k])
		if err != nil {
			return err
		}
		parts = append(parts, part)
	}
	for _, k := range e.entries.CustomKeys() {
		if !token.IsIdentifier(k) {
			e.log.DebugF("skipping custom key %q: not a Go identifier", k)
			continue
		}
		part, err := ldflag(e.pkg, k, e.entries.Custom[k])
		if err != nil {
			return err
		}
		parts = append(parts, part)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}

// ldflag quotes one assignment the way the go command splits -ldflags:
// single quotes unless the value holds one, then double quotes. The go
// command has no escapes, so a value holding both cannot be passed.
func ldflag(pkg, name, value string) (string, error) {
	arg := fmt.Sprintf("%s.%s=%s", pkg, name, utils.StripNewlines(value))
	switch {
	case !strings.Contains(arg, "'"):
		return "-X '" + arg + "'", nil
	case !strings.Contains(arg, `"`):
		return `-X "` + arg + `"`, nil
	}
	return "", apperr.Newf(apperr.ErrorCodeInvalidConfig, "%s holds both quote characters and cannot be passed in -ldflags", name).
		AddSuggestion(name, "remove either the single or the double quotes from the value, or use another output format")
}

func (e *Emitter) writeGo(w io.Writer) error {
	e.logWarnings()
	var buf bytes.Buffer
	buf.WriteString("// Code generated by vergen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", e.pkg)

	keys := e.entries.Keys()
	if len(keys) > 0 {
		buf.WriteString("const (\n")
		for _, k := range keys {
			fmt.Fprintf(&buf, "\t// %s is %s.\n", k.GoName(), k.Name())
			fmt.Fprintf(&buf, "\t%s = %s\n", k.GoName(), strconv.Quote(utils.StripNewlines(e.entries.Env[k])))
		}
		buf.WriteString(")\n\n")
	}

	buf.WriteString("// Env maps environment variable names to their values.\n")
	buf.WriteString("var Env = map[string]string{\n")
	for _, k := range keys {
		fmt.Fprintf(&buf, "\t%s: %s,\n", strconv.Quote(k.Name()), k.GoName())
	}
	for _, k := range e.entries.CustomKeys() {
		fmt.Fprintf(&buf, "\t%s: %s,\n", strconv.Quote(k), strconv.Quote(utils.StripNewlines(e.entries.Custom[k])))
	}
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format generated source: %w", err)
	}
	_, err = w.Write(src)
	return err
}

func (e *Emitter) writeJSON(w io.Writer) error {
	e.logWarnings()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e.values())
}

func (e *Emitter) writeYAML(w io.Writer) error {
	e.logWarnings()
	values := e.values()
	if len(values) == 0 {
		_, err := io.WriteString(w, "{}\n")
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(values); err != nil {
		return err
	}
	return enc.Close()
}
