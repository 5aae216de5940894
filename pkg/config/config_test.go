package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMissingSearchedFileIsNotAnError(t *testing.T) {
	cfg, err := New(
		WithDefaults(map[string]any{"format": "instructions"}),
		WithConfigNamePaths("vergen", t.TempDir()),
	)
	require.NoError(t, err)
	assert.Equal(t, "instructions", cfg.GetString("format"))
}

func TestMissingExplicitFileFails(t *testing.T) {
	_, err := New(WithFile(filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
}

func TestLayering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vergen.yaml", "format: json\nquiet: true\ndescribe-match: v*\npackage: fromfile\n")
	dotenv := writeFile(t, dir, "ci.env", "VERGEN_PACKAGE=fromdotenv\nVERGEN_DESCRIBE_MATCH=fromdotenv\nOTHER=x\n")
	t.Setenv("VERGEN_DESCRIBE_MATCH", "release-*")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "instructions", "")
	flags.Bool("quiet", false, "")
	flags.String("describe-match", "", "")
	flags.String("package", "", "")
	require.NoError(t, flags.Parse([]string{"--format", "yaml"}))

	cfg, err := New(
		WithConfigNamePaths("vergen", dir),
		WithDotEnv(dotenv, "VERGEN", true),
		WithEnv("VERGEN"),
		WithPFlags(flags),
	)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.GetString("format"), "changed flag wins")
	assert.Equal(t, "release-*", cfg.GetString("describe-match"), "env beats dotenv")
	assert.Equal(t, "fromdotenv", cfg.GetString("package"), "dotenv beats file")
	assert.True(t, cfg.GetBool("quiet"), "file beats flag default")
	assert.False(t, cfg.IsSet("other"))
}

func TestWithDotEnvMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	_, err := New(WithDotEnv(missing, "VERGEN", false))
	require.NoError(t, err)

	_, err = New(WithDotEnv(missing, "VERGEN", true))
	require.Error(t, err)
}

func TestDotenvKey(t *testing.T) {
	key, ok := dotenvKey("VERGEN_FAIL_ON_ERROR", "VERGEN")
	assert.True(t, ok)
	assert.Equal(t, "fail-on-error", key)

	_, ok = dotenvKey("GOFLAGS", "VERGEN")
	assert.False(t, ok)

	key, ok = dotenvKey("QUIET", "")
	assert.True(t, ok)
	assert.Equal(t, "quiet", key)
}

func TestWithBindEnv(t *testing.T) {
	t.Setenv("GOFILE", "gen.go")
	cfg, err := New(WithBindEnv("build-file", "VERGEN_BUILD_FILE", "GOFILE"))
	require.NoError(t, err)
	assert.Equal(t, "gen.go", cfg.GetString("build-file"))
}

func TestDecodeAndGetters(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", "pretty:\n  prefix: hello\n  filter: [VERGEN_GIT_SHA]\n")

	cfg, err := New(WithFile(path))
	require.NoError(t, err)

	var p struct {
		Prefix string   `mapstructure:"prefix"`
		Filter []string `mapstructure:"filter"`
	}
	require.NoError(t, cfg.Decode("pretty", &p))
	assert.Equal(t, "hello", p.Prefix)
	assert.Equal(t, []string{"VERGEN_GIT_SHA"}, p.Filter)

	assert.Equal(t, "def", cfg.GetStringD("missing", "def"))
	assert.Equal(t, "hello", cfg.GetStringD("pretty.prefix", "def"))
}
