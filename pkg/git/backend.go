package git

import (
	"context"
	"errors"
	"time"
)

// ErrNoCommitTime marks a repository that has no HEAD commit to read a time
// from. Other CommitTime errors mean the time could not be understood.
var ErrNoCommitTime = errors.New("no commit time")

// Backend opens repositories.
type Backend interface {
	// Open fails when path is not inside a git work tree. An empty path means
	// the current directory.
	Open(ctx context.Context, path string) (Repository, error)
}

// Repository answers questions about HEAD and the work tree.
type Repository interface {
	Branch(ctx context.Context) (string, error)
	CommitAuthorName(ctx context.Context) (string, error)
	CommitAuthorEmail(ctx context.Context) (string, error)
	CommitCount(ctx context.Context) (int, error)
	// CommitMessage returns the subject line of HEAD.
	CommitMessage(ctx context.Context) (string, error)
	// CommitTime returns an error wrapping ErrNoCommitTime when HEAD cannot
	// be read.
	CommitTime(ctx context.Context) (time.Time, error)
	// Describe names HEAD after the nearest reachable tag, falling back to
	// the abbreviated object name. Only annotated tags are considered unless
	// tags is set. A non-empty match restricts tags to a glob.
	Describe(ctx context.Context, tags bool, match string) (string, error)
	SHA(ctx context.Context, short bool) (string, error)
	// Dirty reports uncommitted changes; untracked files count only when
	// includeUntracked is set.
	Dirty(ctx context.Context, includeUntracked bool) (bool, error)
	// WatchPaths lists the files whose change moves HEAD.
	WatchPaths(ctx context.Context) ([]string, error)
}
