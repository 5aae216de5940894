package build

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milan604/vergen/pkg/apperr"
	"github.com/milan604/vergen/pkg/vergen"
)

func fixed() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
}

func TestBuildEntries(t *testing.T) {
	b := AllBuild()
	b.now = fixed
	e := vergen.NewEntries()
	require.NoError(t, b.AddEntries(context.Background(), false, e))

	assert.Equal(t, "2024-01-02", e.Env[vergen.BuildDate])
	assert.Equal(t, "2024-01-02T03:04:05.000000006Z", e.Env[vergen.BuildTimestamp])
	assert.Empty(t, e.Warnings)
}

func TestBuildDisabled(t *testing.T) {
	e := vergen.NewEntries()
	require.NoError(t, (&Build{}).AddEntries(context.Background(), false, e))
	assert.Empty(t, e.Env)
}

func TestBuildIdempotent(t *testing.T) {
	b := AllBuild()
	b.now = fixed
	e := vergen.NewEntries()
	require.NoError(t, b.AddEntries(context.Background(), true, e))

	assert.Equal(t, vergen.Placeholder, e.Env[vergen.BuildDate])
	assert.Equal(t, vergen.Placeholder, e.Env[vergen.BuildTimestamp])
	assert.Equal(t, 2, e.CountIdempotent())
	assert.Len(t, e.Warnings, 2)
}

func TestBuildSourceDateEpoch(t *testing.T) {
	t.Setenv(vergen.SourceDateEpochEnv, "1671809360")
	b := AllBuild()
	b.now = fixed
	e := vergen.NewEntries()
	require.NoError(t, b.AddEntries(context.Background(), true, e))

	assert.Equal(t, "2022-12-23", e.Env[vergen.BuildDate])
	assert.Equal(t, "2022-12-23T15:29:20.000000000Z", e.Env[vergen.BuildTimestamp])
	assert.Zero(t, e.CountIdempotent())
}

func TestBuildBadSourceDateEpoch(t *testing.T) {
	t.Setenv(vergen.SourceDateEpochEnv, "not-a-number")

	em := vergen.New().CustomBuildFile("")
	require.NoError(t, em.AddInstructions(context.Background(), AllBuild()))
	assert.Equal(t, vergen.Placeholder, em.Entries().Env[vergen.BuildDate])
	assert.Contains(t, em.Entries().Warnings, "VERGEN_BUILD_DATE set to default")

	err := vergen.New().FailOnError().AddInstructions(context.Background(), AllBuild())
	assert.True(t, apperr.HasCode(err, apperr.ErrorCodeProviderFailed))
}

func TestBuildOverride(t *testing.T) {
	t.Setenv(vergen.BuildDateName, "1999-12-31")
	b := AllBuild()
	b.now = fixed
	e := vergen.NewEntries()
	require.NoError(t, b.AddEntries(context.Background(), true, e))

	assert.Equal(t, "1999-12-31", e.Env[vergen.BuildDate])
	assert.Equal(t, vergen.Placeholder, e.Env[vergen.BuildTimestamp])
}

func TestBuildLocal(t *testing.T) {
	b := &Build{Timestamp: true, UseLocal: true, now: fixed}
	e := vergen.NewEntries()
	require.NoError(t, b.AddEntries(context.Background(), false, e))

	want := fixed().Local().Format("2006-01-02T15:04:05.000000000Z07:00")
	assert.Equal(t, want, e.Env[vergen.BuildTimestamp])
}

func TestBuildSourceDateEpochIgnoresLocalZone(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("IST", 5*3600+1800)
	t.Cleanup(func() { time.Local = orig })
	t.Setenv(vergen.SourceDateEpochEnv, "1700000000")

	b := AllBuild()
	b.UseLocal = true
	b.now = fixed
	e := vergen.NewEntries()
	require.NoError(t, b.AddEntries(context.Background(), false, e))

	assert.Equal(t, "2023-11-14", e.Env[vergen.BuildDate])
	assert.Equal(t, "2023-11-14T22:13:20.000000000Z", e.Env[vergen.BuildTimestamp])
}
