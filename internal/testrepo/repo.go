// Package testrepo creates throwaway git repositories for tests.
package testrepo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CommitDate is the author and committer date of every commit made here.
const CommitDate = "2024-01-02T03:04:05Z"

// Author of every commit made here.
const (
	AuthorName  = "Vergen Test"
	AuthorEmail = "test@example.com"
)

// TempRepo represents a temporary git repository that can be reused in tests.
type TempRepo struct {
	Root string
}

// New creates a temporary git repository on branch main with an initial
// commit. The test is skipped when git is not installed.
func New(tb testing.TB) *TempRepo {
	tb.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		tb.Skip("git not installed")
	}
	root, err := os.MkdirTemp("", "vergen-test-repo-*")
	if err != nil {
		tb.Fatalf("create temp repo directory: %v", err)
	}
	// Resolve symlinks so paths reported by git compare equal to Root.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	repo := &TempRepo{Root: root}
	tb.Cleanup(func() {
		if cleanupErr := repo.Cleanup(); cleanupErr != nil {
			tb.Fatalf("cleanup temp repo: %v", cleanupErr)
		}
	})

	repo.RunGit(tb, "init", "--quiet")
	repo.RunGit(tb, "symbolic-ref", "HEAD", "refs/heads/main")
	repo.RunGit(tb, "config", "user.name", AuthorName)
	repo.RunGit(tb, "config", "user.email", AuthorEmail)
	repo.RunGit(tb, "config", "commit.gpgsign", "false")
	repo.RunGit(tb, "config", "tag.gpgsign", "false")

	repo.WriteFile(tb, "README.md", "# Temp Vergen Repository\n")
	repo.Commit(tb, "Initial commit")
	return repo
}

// RunGit executes git in the repository directory and fails the test if git returns an error.
func (r *TempRepo) RunGit(tb testing.TB, args ...string) string {
	tb.Helper()
	output, err := runGit(r.Root, args...)
	if err != nil {
		tb.Fatalf("git %s failed: %v: %s", strings.Join(args, " "), err, output)
	}
	return strings.TrimSpace(output)
}

// WriteFile writes a file relative to the repository root.
func (r *TempRepo) WriteFile(tb testing.TB, name, content string) {
	tb.Helper()
	path := filepath.Join(r.Root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
}

// Commit stages everything and commits it.
func (r *TempRepo) Commit(tb testing.TB, message string) {
	tb.Helper()
	r.RunGit(tb, "add", "-A")
	r.RunGit(tb, "commit", "--quiet", "--allow-empty", "-m", message)
}

// Tag tags HEAD, annotated when message is non-empty.
func (r *TempRepo) Tag(tb testing.TB, name, message string) {
	tb.Helper()
	if message == "" {
		r.RunGit(tb, "tag", name)
		return
	}
	r.RunGit(tb, "tag", "-a", name, "-m", message)
}

// HEAD returns the full object name of HEAD.
func (r *TempRepo) HEAD(tb testing.TB) string {
	tb.Helper()
	return r.RunGit(tb, "rev-parse", "HEAD")
}

// Cleanup removes the temporary repository root. Missing directories are treated as success.
func (r *TempRepo) Cleanup() error {
	if r == nil || r.Root == "" {
		return nil
	}
	if err := os.RemoveAll(r.Root); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp repo %s: %w", r.Root, err)
	}
	return nil
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_DATE="+CommitDate,
		"GIT_COMMITTER_DATE="+CommitDate,
		"GIT_CONFIG_NOSYSTEM=1",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(output), nil
}
