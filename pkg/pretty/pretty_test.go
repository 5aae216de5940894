package pretty

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/milan604/vergen/pkg/vergen"
)

func testEnv() Env {
	return Env{
		vergen.BuildTimestampName:      "2024-01-02T03:04:05.000000000Z",
		vergen.GitSHAName:              "abcdef0",
		vergen.SysinfoCPUCoreCountName: "8",
		vergen.GitBranchName:           "",
		"MY_KEY":                       "custom value",
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key, category, label string
	}{
		{"VERGEN_GIT_COMMIT_AUTHOR_EMAIL", "git", "Commit Author Email"},
		{"VERGEN_GIT_SHA", "git", "SHA"},
		{"VERGEN_SYSINFO_OS_VERSION", "sysinfo", "OS Version"},
		{"VERGEN_SYSINFO_CPU_CORE_COUNT", "sysinfo", "CPU Core Count"},
		{"VERGEN_GOBUILD_TARGET_TRIPLE", "gobuild", "Target Triple"},
		{"VERGEN_BUILD", "custom", "build"},
		{"test_k", "custom", "test_k"},
		{"MY_KEY", "custom", "my_key"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			category, label := splitKey(tt.key)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestVarsSkipEmptyAndFiltered(t *testing.T) {
	vars := New(testEnv(), WithFilter(vergen.GitSHAName)).Vars()
	keys := make([]string, 0, len(vars))
	for _, v := range vars {
		keys = append(keys, v.Key)
	}
	assert.Equal(t, []string{"MY_KEY", vergen.BuildTimestampName, vergen.SysinfoCPUCoreCountName}, keys)
}

func TestDisplay(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(testEnv(), WithoutColor()).Display(&buf))

	want := strings.Join([]string{
		"        my_key ( custom): custom value",
		"     Timestamp (  build): 2024-01-02T03:04:05.000000000Z",
		"           SHA (    git): abcdef0",
		"CPU Core Count (sysinfo): 8",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestDisplayWithoutCategory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Env{vergen.GitSHAName: "abc"}, WithoutColor(), WithoutCategory()).Display(&buf))
	assert.Equal(t, "SHA: abc\n", buf.String())
}

func TestDisplayBanners(t *testing.T) {
	var buf bytes.Buffer
	p := New(Env{vergen.GitSHAName: "abc"},
		WithPrefix(Banner{Lines: []string{"APP", "v1"}}),
		WithSuffix(Banner{Lines: []string{"bye"}}),
		WithoutColor(),
	)
	require.NoError(t, p.Display(&buf))
	assert.Equal(t, "APP\nv1\n\nSHA (git): abc\nbye\n", buf.String())
}

func TestDisplayEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Env{}, WithoutColor()).Display(&buf))
	assert.Empty(t, buf.String())
}

func TestDisplayStyled(t *testing.T) {
	var buf bytes.Buffer
	style := lipgloss.NewStyle().Bold(true)
	require.NoError(t, New(Env{vergen.GitSHAName: "abc"}, WithKeyStyle(style), WithValueStyle(style)).Display(&buf))
	assert.Contains(t, buf.String(), "abc")
	assert.Contains(t, buf.String(), "SHA (git)")
}

func TestTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := New(Env{vergen.GitSHAName: "abc"},
		WithPrefix(Banner{Lines: []string{"APP"}, Level: zapcore.WarnLevel}),
		WithLevel(zapcore.DebugLevel),
	)
	p.Trace(zap.New(core))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "APP", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "SHA (git): abc", entries[1].Message)
	assert.Equal(t, "VERGEN_GIT_SHA", entries[1].ContextMap()["key"])

	New(testEnv()).Trace(nil)
}

func TestTraceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("test").Start(context.Background(), "build")
	New(testEnv()).TraceSpan(ctx)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, SpanEventName, events[0].Name)

	attrs := map[string]string{}
	for _, a := range events[0].Attributes {
		attrs[string(a.Key)] = a.Value.AsString()
	}
	assert.Equal(t, "abcdef0", attrs["git_sha"])
	assert.Equal(t, "8", attrs["sysinfo_cpu_core_count"])

	// No span in context: nothing to record and nothing to fail.
	New(testEnv()).TraceSpan(context.Background())
}

func TestMarshalJSON(t *testing.T) {
	out, err := json.Marshal(New(testEnv(), WithPrefix(Banner{Lines: []string{"APP"}})))
	require.NoError(t, err)

	var doc struct {
		Prefix struct {
			Lines []string `json:"lines"`
		} `json:"prefix"`
		Vars   map[string]string `json:"vars"`
		Suffix *json.RawMessage  `json:"suffix"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, []string{"APP"}, doc.Prefix.Lines)
	assert.Nil(t, doc.Suffix)
	assert.Equal(t, map[string]string{
		"build_timestamp":        "2024-01-02T03:04:05.000000000Z",
		"git_sha":                "abcdef0",
		"sysinfo_cpu_core_count": "8",
		"custom_my_key":          "custom value",
	}, doc.Vars)
}

func TestMarshalFlatten(t *testing.T) {
	out, err := json.Marshal(New(Env{vergen.GitSHAName: "abc"}, WithFlatten()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"git_sha":"abc"}`, string(out))

	out, err = json.Marshal(New(Env{vergen.GitSHAName: "abc"}, WithFlatten(), WithSuffix(Banner{Lines: []string{"x"}})))
	require.NoError(t, err)
	assert.JSONEq(t, `{"vars":{"git_sha":"abc"},"suffix":{"lines":["x"]}}`, string(out))
}

func TestMarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(New(Env{vergen.GitSHAName: "abc"}))
	require.NoError(t, err)
	assert.Equal(t, "vars:\n    git_sha: abc\n", string(out))
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := HeaderConfig{
		Env:         Env{vergen.GitSHAName: "abc"},
		Prefix:      "APP\n",
		Suffix:      "END",
		RandomStyle: true,
		NoColor:     true,
	}
	require.NoError(t, Header(cfg, &buf, zap.New(core)))
	assert.Equal(t, "APP\n\nSHA (git): abc\nEND\n", buf.String())
	assert.Equal(t, 3, logs.Len())

	require.NoError(t, Header(cfg, nil, nil))
}

func TestCollector(t *testing.T) {
	c := NewCollector(Env{vergen.GitSHAName: "abc", "my-key": "v"})
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	want := `
# HELP vergen_build_info Build metadata captured by vergen. The value is always 1.
# TYPE vergen_build_info gauge
vergen_build_info{custom_my_key="v",git_sha="abc"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), BuildInfoMetric))
}

func TestEnvSources(t *testing.T) {
	t.Setenv(vergen.GitSHAName, "from-os")
	t.Setenv("MY_EXTRA", "extra")
	env := EnvFromOS("MY_EXTRA")
	assert.Equal(t, "from-os", env[vergen.GitSHAName])
	assert.Equal(t, "extra", env["MY_EXTRA"])
	assert.Contains(t, env, vergen.BuildDateName)

	path := filepath.Join(t.TempDir(), "build.env")
	require.NoError(t, os.WriteFile(path, []byte("VERGEN_GIT_SHA=\"abc\"\nVERGEN_GIT_BRANCH=main\n"), 0o644))
	env, err := EnvFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Env{vergen.GitSHAName: "abc", vergen.GitBranchName: "main"}, env)

	_, err = EnvFromFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	assert.Equal(t, Env{"A": "b"}, EnvFromMap(map[string]string{"A": "b"}))
}

func TestParseInstructions(t *testing.T) {
	in := strings.Join([]string{
		"vergen:env=VERGEN_GIT_SHA=abc",
		"vergen:env=VERGEN_GIT_COMMIT_MESSAGE=a=b",
		"vergen:warning=VERGEN_GIT_BRANCH set to default",
		"vergen:rerun-if-env-changed=VERGEN_IDEMPOTENT",
	}, "\n")
	env, err := ParseInstructions(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, Env{vergen.GitSHAName: "abc", vergen.GitCommitMessageName: "a=b"}, env)

	_, err = ParseInstructions(strings.NewReader("vergen:env=broken"))
	assert.Error(t, err)
}
