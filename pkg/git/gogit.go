package git

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/milan604/vergen/pkg/utils"
)

const shortSHALen = 7

// GoGit reads repositories with go-git and needs no git binary.
type GoGit struct{}

// Open implements Backend.
func (GoGit) Open(_ context.Context, dir string) (Repository, error) {
	dir = utils.Coalesce(dir, ".")
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%q is not inside a git work tree: %w", dir, err)
	}
	return &goGitRepo{repo: repo}, nil
}

type goGitRepo struct {
	repo *gogit.Repository
}

func (r *goGitRepo) head() (*plumbing.Reference, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref, nil
}

func (r *goGitRepo) commit() (*object.Commit, error) {
	ref, err := r.head()
	if err != nil {
		return nil, err
	}
	c, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	return c, nil
}

func (r *goGitRepo) Branch(context.Context) (string, error) {
	ref, err := r.head()
	if err != nil {
		return "", err
	}
	if !ref.Name().IsBranch() {
		return "HEAD", nil
	}
	return ref.Name().Short(), nil
}

func (r *goGitRepo) CommitAuthorName(context.Context) (string, error) {
	c, err := r.commit()
	if err != nil {
		return "", err
	}
	return c.Author.Name, nil
}

func (r *goGitRepo) CommitAuthorEmail(context.Context) (string, error) {
	c, err := r.commit()
	if err != nil {
		return "", err
	}
	return c.Author.Email, nil
}

func (r *goGitRepo) CommitCount(context.Context) (int, error) {
	ref, err := r.head()
	if err != nil {
		return 0, err
	}
	iter, err := r.repo.Log(&gogit.LogOptions{From: ref.Hash()})
	if err != nil {
		return 0, fmt.Errorf("walk history: %w", err)
	}
	defer iter.Close()
	n := 0
	err = iter.ForEach(func(*object.Commit) error {
		n++
		return nil
	})
	return n, err
}

func (r *goGitRepo) CommitMessage(context.Context) (string, error) {
	c, err := r.commit()
	if err != nil {
		return "", err
	}
	subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return strings.TrimSpace(subject), nil
}

func (r *goGitRepo) CommitTime(context.Context) (time.Time, error) {
	c, err := r.commit()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrNoCommitTime, err)
	}
	return c.Committer.When, nil
}

func (r *goGitRepo) SHA(_ context.Context, short bool) (string, error) {
	ref, err := r.head()
	if err != nil {
		return "", err
	}
	sha := ref.Hash().String()
	if short {
		sha = sha[:shortSHALen]
	}
	return sha, nil
}

func (r *goGitRepo) Dirty(_ context.Context, includeUntracked bool) (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open work tree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("work tree status: %w", err)
	}
	for _, s := range status {
		untracked := s.Staging == gogit.Untracked && s.Worktree == gogit.Untracked
		if untracked && !includeUntracked {
			continue
		}
		if s.Staging != gogit.Unmodified || s.Worktree != gogit.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

type tagCandidate struct {
	name      string
	annotated bool
}

// tagsByCommit maps commits to the tags eligible for describe.
func (r *goGitRepo) tagsByCommit(lightweight bool, match string) (map[plumbing.Hash][]tagCandidate, error) {
	refs, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	byCommit := make(map[plumbing.Hash][]tagCandidate)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if match != "" {
			if ok, _ := path.Match(match, name); !ok {
				return nil
			}
		}
		tag, err := r.repo.TagObject(ref.Hash())
		switch {
		case err == nil:
			c, err := tag.Commit()
			if err != nil {
				// Tags of trees and blobs never describe a commit.
				return nil
			}
			byCommit[c.Hash] = append(byCommit[c.Hash], tagCandidate{name: name, annotated: true})
		case errors.Is(err, plumbing.ErrObjectNotFound):
			if lightweight {
				byCommit[ref.Hash()] = append(byCommit[ref.Hash()], tagCandidate{name: name})
			}
		default:
			return err
		}
		return nil
	})
	return byCommit, err
}

// best prefers annotated tags, then the highest name.
func best(candidates []tagCandidate) string {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].annotated != candidates[j].annotated {
			return candidates[i].annotated
		}
		return candidates[i].name > candidates[j].name
	})
	return candidates[0].name
}

func (r *goGitRepo) Describe(_ context.Context, tags bool, match string) (string, error) {
	ref, err := r.head()
	if err != nil {
		return "", err
	}
	byCommit, err := r.tagsByCommit(tags, match)
	if err != nil {
		return "", err
	}
	short := ref.Hash().String()[:shortSHALen]
	if len(byCommit) == 0 {
		return short, nil
	}

	iter, err := r.repo.Log(&gogit.LogOptions{From: ref.Hash(), Order: gogit.LogOrderBSF})
	if err != nil {
		return "", fmt.Errorf("walk history: %w", err)
	}
	defer iter.Close()

	var name string
	depth := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if candidates, ok := byCommit[c.Hash]; ok {
			name = best(candidates)
			return storer.ErrStop
		}
		depth++
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk history: %w", err)
	}
	switch {
	case name == "":
		return short, nil
	case depth == 0:
		return name, nil
	}
	return fmt.Sprintf("%s-%d-g%s", name, depth, short), nil
}

func (r *goGitRepo) WatchPaths(context.Context) ([]string, error) {
	fs, ok := r.repo.Storer.(*filesystem.Storage)
	if !ok {
		return nil, nil
	}
	gitDir := fs.Filesystem().Root()

	var paths []string
	head := filepath.Join(gitDir, "HEAD")
	if exists(head) {
		paths = append(paths, head)
	}
	ref, err := r.repo.Reference(plumbing.HEAD, false)
	if err == nil && ref.Type() == plumbing.SymbolicReference {
		refPath := filepath.Join(gitDir, filepath.FromSlash(ref.Target().String()))
		if exists(refPath) {
			paths = append(paths, refPath)
		}
	}
	return paths, nil
}
