package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with none of the variables
// that steer emission.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, name := range []string{
		"SOURCE_DATE_EPOCH", "VERGEN_IDEMPOTENT", "GOFILE", "VERGEN_BUILD_FILE",
		"VERGEN_FORMAT", "VERGEN_BUILD_DATE", "VERGEN_BUILD_TIMESTAMP",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	return dir
}

func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestEmitIdempotentBuild(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "", "emit", "--build", "--idempotent", "--quiet")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, `vergen:env=VERGEN_BUILD_DATE=VERGEN_IDEMPOTENT_OUTPUT
vergen:env=VERGEN_BUILD_TIMESTAMP=VERGEN_IDEMPOTENT_OUTPUT
vergen:rerun-if-env-changed=VERGEN_IDEMPOTENT
vergen:rerun-if-env-changed=SOURCE_DATE_EPOCH
`, out)
}

func TestEmitWarningsAndBuildFile(t *testing.T) {
	isolate(t)
	t.Setenv("GOFILE", "gen.go")
	code, out, _ := run(t, "", "emit", "--build", "--idempotent")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "vergen:warning=VERGEN_BUILD_DATE set to default\n")
	assert.Contains(t, out, "vergen:rerun-if-changed=gen.go\n")
}

func TestEmitSourceDateEpochJSON(t *testing.T) {
	isolate(t)
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	code, out, errOut := run(t, "", "emit", "--build", "--format", "JSON")
	require.Equal(t, 0, code, errOut)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{
		"VERGEN_BUILD_DATE":      "2023-11-14",
		"VERGEN_BUILD_TIMESTAMP": "2023-11-14T22:13:20.000000000Z",
	}, got)
}

func TestEmitBadSourceDateEpochFails(t *testing.T) {
	isolate(t)
	t.Setenv("SOURCE_DATE_EPOCH", "soon")
	code, _, errOut := run(t, "", "emit", "--build", "--fail-on-error")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "SOURCE_DATE_EPOCH")
}

func TestEmitFormatFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("VERGEN_FORMAT", "env")
	code, out, _ := run(t, "", "emit", "--build", "--idempotent", "--quiet")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "VERGEN_BUILD_DATE=")
	assert.NotContains(t, out, "vergen:")
}

func TestEmitWarningsGoToLogForDataFormats(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "", "emit", "--build", "--idempotent", "--format", "json", "--no-color")
	require.Equal(t, 0, code)
	assert.NotContains(t, out, "set to default")
	assert.Contains(t, errOut, "WARN")
	assert.Contains(t, errOut, "VERGEN_BUILD_TIMESTAMP set to default")
}

func TestEmitConfigFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vergen.yaml"),
		[]byte("format: yaml\nbuild: true\nidempotent: true\nquiet: true\n"), 0o644))

	code, out, errOut := run(t, "", "emit")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "VERGEN_BUILD_DATE: VERGEN_IDEMPOTENT_OUTPUT\nVERGEN_BUILD_TIMESTAMP: VERGEN_IDEMPOTENT_OUTPUT\n", out)
}

func TestEmitDotenvOptions(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ci.env")
	require.NoError(t, os.WriteFile(path, []byte("VERGEN_FORMAT=json\nVERGEN_QUIET=true\n"), 0o644))

	code, out, errOut := run(t, "", "--dotenv", path, "emit", "--build", "--idempotent")
	require.Equal(t, 0, code, errOut)
	assert.JSONEq(t, `{"VERGEN_BUILD_DATE":"VERGEN_IDEMPOTENT_OUTPUT","VERGEN_BUILD_TIMESTAMP":"VERGEN_IDEMPOTENT_OUTPUT"}`, out)
	assert.Empty(t, errOut)

	code, _, _ = run(t, "", "--dotenv", filepath.Join(dir, "missing.env"), "emit")
	assert.Equal(t, 2, code)
}

func TestEmitInvalidOptions(t *testing.T) {
	isolate(t)

	code, _, errOut := run(t, "", "emit", "--format", "toml")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "format: must be one of")

	code, _, errOut = run(t, "", "emit", "--format", "go")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "package:")

	code, _, errOut = run(t, "", "emit", "--dep-name", "(")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "dep-name:")

	code, _, errOut = run(t, "", "emit", "--build", "--custom", "novalue")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "KEY=VALUE")

	code, _, _ = run(t, "", "emit", "extra-arg")
	assert.NotEqual(t, 0, code)
}

func TestEmitLdflagsWithCustom(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "",
		"emit", "--build", "--idempotent", "--quiet",
		"--format", "ldflags", "--package", "example.com/app/version",
		"--custom", "Version=v1.0.0", "--custom", "not-an-ident=x",
	)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "-X 'example.com/app/version.BuildDate=VERGEN_IDEMPOTENT_OUTPUT' "+
		"-X 'example.com/app/version.BuildTimestamp=VERGEN_IDEMPOTENT_OUTPUT' "+
		"-X 'example.com/app/version.Version=v1.0.0'\n", out)
}

func TestEmitLdflagsQuoting(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "",
		"emit", "--build", "--idempotent", "--quiet", "--format", "ldflags", "--package", "main",
		"--custom", "Motto=Don't panic",
	)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "-X 'main.BuildDate=VERGEN_IDEMPOTENT_OUTPUT' "+
		"-X 'main.BuildTimestamp=VERGEN_IDEMPOTENT_OUTPUT' "+
		`-X "main.Motto=Don't panic"`+"\n", out)

	code, out, _ = run(t, "",
		"emit", "--build", "--idempotent", "--quiet", "--format", "ldflags", "--package", "main",
		"--custom", `Motto=it's "fine"`,
	)
	assert.Equal(t, 2, code)
	assert.Empty(t, out)
}

func TestEmitCustomBuiltinKeyIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	code, out, errOut := run(t, "", "emit", "--build", "--custom", "VERGEN_BUILD_DATE=1999-12-31")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, 1, strings.Count(out, "vergen:env=VERGEN_BUILD_DATE="))
	assert.Contains(t, out, "vergen:env=VERGEN_BUILD_DATE=2023-11-14\n")
	assert.Contains(t, out, "vergen:warning=VERGEN_BUILD_DATE is a built-in key, custom value ignored\n")
}

func TestEmitOutputFileThenPretty(t *testing.T) {
	dir := isolate(t)
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	path := filepath.Join(dir, "build.txt")

	code, out, errOut := run(t, "", "emit", "--build", "--custom", "APP_NAME=demo", "--output", path)
	require.Equal(t, 0, code, errOut)
	assert.Empty(t, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vergen:env=APP_NAME=demo\n")

	code, out, errOut = run(t, "", "pretty", "--instructions", path, "--output", "json", "--flatten")
	require.Equal(t, 0, code, errOut)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{
		"build_date":      "2023-11-14",
		"build_timestamp": "2023-11-14T22:13:20.000000000Z",
		"custom_app_name": "demo",
	}, got)
}

func TestPrettyFromStdin(t *testing.T) {
	isolate(t)
	in := "vergen:env=VERGEN_GIT_SHA=abc123\nvergen:warning=ignored\n"

	code, out, errOut := run(t, in, "pretty", "--instructions", "-", "--no-color", "--no-category")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "SHA: abc123")

	code, out, _ = run(t, in, "pretty", "--instructions", "-", "--output", "prometheus")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `vergen_build_info{git_sha="abc123"} 1`)
}

func TestPrettyEnvFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "build.env")
	require.NoError(t, os.WriteFile(path, []byte("VERGEN_GO_VERSION=go1.26.0\n"), 0o644))

	code, out, errOut := run(t, "", "pretty", "--env-file", path, "--output", "yaml")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "vars:\n    go_version: go1.26.0\n", out)

	code, _, _ = run(t, "", "pretty", "--env-file", path, "--instructions", "-")
	assert.Equal(t, 2, code)

	code, _, _ = run(t, "", "pretty", "--env-file", filepath.Join(dir, "missing.env"))
	assert.Equal(t, 2, code)
}

func TestKeys(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "", "keys", "--json")
	require.Equal(t, 0, code)
	var docs []keyDoc
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	assert.Len(t, docs, 32)
	assert.Equal(t, "VERGEN_BUILD_DATE", docs[0].Name)
	assert.Equal(t, "BuildDate", docs[0].GoName)

	code, out, _ = run(t, "", "keys", "--category", "git", "--no-color")
	require.Equal(t, 0, code)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 10)
	assert.Contains(t, out, "VERGEN_GIT_SHA")
	assert.NotContains(t, out, "VERGEN_BUILD_DATE")
}

func TestVersion(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "", "version")
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "vergen "))

	code, out, _ = run(t, "", "version", "--json")
	require.Equal(t, 0, code)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])
}
