package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/milan604/vergen/pkg/utils"
)

// CLI runs the git binary. Commands run with GIT_OPTIONAL_LOCKS=0 so that
// reading state never rewrites the index.
type CLI struct {
	// Binary defaults to "git".
	Binary string
	// CheckCommand verifies git is usable before anything else runs.
	// It defaults to `git --version`.
	CheckCommand []string
}

func (c *CLI) binary() string {
	return utils.Coalesce(c.Binary, "git")
}

// Open implements Backend.
func (c *CLI) Open(ctx context.Context, path string) (Repository, error) {
	check := c.CheckCommand
	if len(check) == 0 {
		check = []string{c.binary(), "--version"}
	}
	// The check runs outside path so a missing path is reported as such.
	if _, err := run(ctx, "", check[0], check[1:]...); err != nil {
		return nil, fmt.Errorf("git command not usable: %w", err)
	}
	repo := &cliRepo{binary: c.binary(), dir: path}
	inside, err := repo.git(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil || inside != "true" {
		return nil, fmt.Errorf("%q is not inside a git work tree", utils.Coalesce(path, "."))
	}
	return repo, nil
}

type cliRepo struct {
	binary string
	dir    string
}

func run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_OPTIONAL_LOCKS=0")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return utils.TrimOutput(string(out)), nil
}

func (r *cliRepo) git(ctx context.Context, args ...string) (string, error) {
	return run(ctx, r.dir, r.binary, args...)
}

func (r *cliRepo) Branch(ctx context.Context) (string, error) {
	return r.git(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "HEAD")
}

func (r *cliRepo) CommitAuthorName(ctx context.Context) (string, error) {
	return r.git(ctx, "log", "-1", "--pretty=format:%an")
}

func (r *cliRepo) CommitAuthorEmail(ctx context.Context) (string, error) {
	return r.git(ctx, "log", "-1", "--pretty=format:%ae")
}

func (r *cliRepo) CommitCount(ctx context.Context) (int, error) {
	out, err := r.git(ctx, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(out)
}

func (r *cliRepo) CommitMessage(ctx context.Context) (string, error) {
	return r.git(ctx, "log", "-1", "--format=%s")
}

func (r *cliRepo) CommitTime(ctx context.Context) (time.Time, error) {
	out, err := r.git(ctx, "log", "-1", "--pretty=format:%cI")
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrNoCommitTime, err)
	}
	line := utils.TrimOutput(utils.LastLine(out))
	ts, err := utils.ParseRFC3339(line)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid git log output %q: %w", line, err)
	}
	return ts, nil
}

func (r *cliRepo) Describe(ctx context.Context, tags bool, match string) (string, error) {
	args := []string{"describe", "--always"}
	if tags {
		args = append(args, "--tags")
	}
	if match != "" {
		args = append(args, "--match", match)
	}
	return r.git(ctx, args...)
}

func (r *cliRepo) SHA(ctx context.Context, short bool) (string, error) {
	args := []string{"rev-parse"}
	if short {
		args = append(args, "--short")
	}
	return r.git(ctx, append(args, "HEAD")...)
}

func (r *cliRepo) Dirty(ctx context.Context, includeUntracked bool) (bool, error) {
	args := []string{"status", "--porcelain"}
	if !includeUntracked {
		args = append(args, "--untracked-files=no")
	}
	out, err := r.git(ctx, args...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (r *cliRepo) WatchPaths(ctx context.Context) ([]string, error) {
	gitDir, err := r.git(ctx, "rev-parse", "--git-dir")
	if err != nil {
		// Not fatal: there is simply nothing to watch.
		return nil, nil
	}
	if !filepath.IsAbs(gitDir) && r.dir != "" {
		gitDir = filepath.Join(r.dir, gitDir)
	}

	var paths []string
	head := filepath.Join(gitDir, "HEAD")
	if exists(head) {
		paths = append(paths, head)
	}
	// Detached HEAD has no symbolic ref.
	if ref, err := r.git(ctx, "symbolic-ref", "HEAD"); err == nil {
		refPath := filepath.Join(gitDir, filepath.FromSlash(ref))
		if exists(refPath) {
			paths = append(paths, refPath)
		}
	}
	return paths, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
