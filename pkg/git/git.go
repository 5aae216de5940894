// Package git emits the state of the git repository being built.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/milan604/vergen/pkg/utils"
	"github.com/milan604/vergen/pkg/vergen"
)

// Git configures the VERGEN_GIT_* keys.
type Git struct {
	Branch            bool
	CommitAuthorEmail bool
	CommitAuthorName  bool
	CommitCount       bool
	CommitDate        bool
	CommitMessage     bool
	CommitTimestamp   bool
	Describe          bool
	SHA               bool
	Dirty             bool

	// DescribeTags considers lightweight tags too.
	DescribeTags bool
	// DescribeDirty appends "-dirty" when the work tree has tracked changes.
	DescribeDirty bool
	// DescribeMatch restricts describe to tags matching a glob.
	DescribeMatch string
	// SHAShort emits the abbreviated object name.
	SHAShort bool
	// DirtyIncludeUntracked counts untracked files as changes.
	DirtyIncludeUntracked bool
	// UseLocal formats commit times in the local time zone instead of UTC.
	UseLocal bool

	// RepoPath is where the repository is looked up; empty is the working directory.
	RepoPath string
	// Backend defaults to the git command line.
	Backend Backend
}

// AllGit enables every git key.
func AllGit() *Git {
	return &Git{
		Branch:            true,
		CommitAuthorEmail: true,
		CommitAuthorName:  true,
		CommitCount:       true,
		CommitDate:        true,
		CommitMessage:     true,
		CommitTimestamp:   true,
		Describe:          true,
		SHA:               true,
		Dirty:             true,
	}
}

func (g *Git) enabled() bool {
	return g.Branch || g.CommitAuthorEmail || g.CommitAuthorName || g.CommitCount ||
		g.CommitDate || g.CommitMessage || g.CommitTimestamp || g.Describe || g.SHA || g.Dirty
}

func (g *Git) backend() Backend {
	if g.Backend != nil {
		return g.Backend
	}
	return &CLI{}
}

func overridden(key vergen.Key) bool {
	_, ok := os.LookupEnv(key.Name())
	return ok
}

// addValue records the result of get, or the default entry when the key is
// overridden. A failing get aborts the provider.
func addValue(e *vergen.Entries, on bool, key vergen.Key, get func() (string, error)) error {
	if !on {
		return nil
	}
	if overridden(key) {
		e.AddDefaultEntry(key)
		return nil
	}
	value, err := get()
	if err != nil {
		return fmt.Errorf("%s: %w", key.Name(), err)
	}
	e.AddEntry(key, value)
	return nil
}

// AddEntries implements vergen.Provider.
func (g *Git) AddEntries(ctx context.Context, idempotent bool, e *vergen.Entries) error {
	if !g.enabled() {
		return nil
	}
	repo, err := g.backend().Open(ctx, g.RepoPath)
	if err != nil {
		return err
	}

	if !idempotent {
		paths, err := repo.WatchPaths(ctx)
		if err != nil {
			return fmt.Errorf("locate git files: %w", err)
		}
		for _, p := range paths {
			e.AddRerunIfChanged(p)
		}
	}

	if err := addValue(e, g.Branch, vergen.GitBranch, func() (string, error) {
		return repo.Branch(ctx)
	}); err != nil {
		return err
	}
	if err := addValue(e, g.CommitAuthorEmail, vergen.GitCommitAuthorEmail, func() (string, error) {
		return repo.CommitAuthorEmail(ctx)
	}); err != nil {
		return err
	}
	if err := addValue(e, g.CommitAuthorName, vergen.GitCommitAuthorName, func() (string, error) {
		return repo.CommitAuthorName(ctx)
	}); err != nil {
		return err
	}
	if err := addValue(e, g.CommitCount, vergen.GitCommitCount, func() (string, error) {
		n, err := repo.CommitCount(ctx)
		return strconv.Itoa(n), err
	}); err != nil {
		return err
	}
	if err := g.addTimestamps(ctx, repo, idempotent, e); err != nil {
		return err
	}
	if err := addValue(e, g.CommitMessage, vergen.GitCommitMessage, func() (string, error) {
		return repo.CommitMessage(ctx)
	}); err != nil {
		return err
	}

	// Tracked-only dirty state is shared with describe.
	var dirtyCache *bool
	if err := addValue(e, g.Dirty, vergen.GitDirty, func() (string, error) {
		dirty, err := repo.Dirty(ctx, g.DirtyIncludeUntracked)
		if err == nil && !g.DirtyIncludeUntracked {
			dirtyCache = &dirty
		}
		return strconv.FormatBool(dirty), err
	}); err != nil {
		return err
	}
	if err := addValue(e, g.Describe, vergen.GitDescribe, func() (string, error) {
		describe, err := repo.Describe(ctx, g.DescribeTags, g.DescribeMatch)
		if err != nil || !g.DescribeDirty {
			return describe, err
		}
		dirty := dirtyCache != nil && *dirtyCache
		if dirtyCache == nil {
			if dirty, err = repo.Dirty(ctx, false); err != nil {
				return "", err
			}
		}
		if dirty {
			describe += "-dirty"
		}
		return describe, nil
	}); err != nil {
		return err
	}
	return addValue(e, g.SHA, vergen.GitSHA, func() (string, error) {
		return repo.SHA(ctx, g.SHAShort)
	})
}

func (g *Git) addTimestamps(ctx context.Context, repo Repository, idempotent bool, e *vergen.Entries) error {
	date := g.CommitDate
	if date && overridden(vergen.GitCommitDate) {
		e.AddDefaultEntry(vergen.GitCommitDate)
		date = false
	}
	timestamp := g.CommitTimestamp
	if timestamp && overridden(vergen.GitCommitTimestamp) {
		e.AddDefaultEntry(vergen.GitCommitTimestamp)
		timestamp = false
	}
	if !date && !timestamp {
		return nil
	}

	defaults := func() {
		if date {
			e.AddDefaultEntry(vergen.GitCommitDate)
		}
		if timestamp {
			e.AddDefaultEntry(vergen.GitCommitTimestamp)
		}
	}

	// A repository without a HEAD commit is absent data; unreadable output is not.
	ts, err := repo.CommitTime(ctx)
	if errors.Is(err, ErrNoCommitTime) {
		defaults()
		return nil
	}
	if err != nil {
		return fmt.Errorf("commit timestamp: %w", err)
	}
	sde, fromSDE, err := utils.LookupSourceDateEpoch()
	if err != nil {
		return fmt.Errorf("commit timestamp: %w", err)
	}
	if fromSDE {
		ts = sde
	} else {
		ts = utils.InZone(ts, g.UseLocal)
	}
	if idempotent && !fromSDE {
		defaults()
		return nil
	}
	if date {
		e.AddEntry(vergen.GitCommitDate, utils.FormatDate(ts))
	}
	if timestamp {
		e.AddEntry(vergen.GitCommitTimestamp, utils.FormatTimestamp(ts))
	}
	return nil
}

// AddDefaultEntries implements vergen.Provider. Warnings and rerun paths
// gathered so far are dropped and the failure is reported as a warning.
func (g *Git) AddDefaultEntries(cfg vergen.DefaultConfig, e *vergen.Entries) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	e.ResetSideEffects()
	if cfg.Err != nil {
		e.AddWarning("%v", cfg.Err)
	}
	for _, k := range []struct {
		on  bool
		key vergen.Key
	}{
		{g.Branch, vergen.GitBranch},
		{g.CommitAuthorEmail, vergen.GitCommitAuthorEmail},
		{g.CommitAuthorName, vergen.GitCommitAuthorName},
		{g.CommitCount, vergen.GitCommitCount},
		{g.CommitDate, vergen.GitCommitDate},
		{g.CommitMessage, vergen.GitCommitMessage},
		{g.CommitTimestamp, vergen.GitCommitTimestamp},
		{g.Describe, vergen.GitDescribe},
		{g.SHA, vergen.GitSHA},
		{g.Dirty, vergen.GitDirty},
	} {
		if k.on {
			e.AddDefaultEntry(k.key)
		}
	}
	return nil
}
