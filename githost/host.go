/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githost

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports that a repository, ref or object does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports that a repository or ref being created exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict reports that a ref moved away from the expected commit.
	ErrConflict = errors.New("ref update conflict")

	// ErrTransient marks failures that may succeed when retried.
	ErrTransient = errors.New("transient failure")
)

// Mode is the git file mode of a tree entry.
type Mode string

const (
	ModeFile       Mode = "100644"
	ModeExecutable Mode = "100755"
)

// Repository describes a remote repository.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
	Private       bool
	HTMLURL       string
}

// RepositorySpec describes a repository to create.
type RepositorySpec struct {
	Name        string
	Description string
	Private     bool
}

// TreeEntry is a blob placed at a path within a tree.
type TreeEntry struct {
	Path string
	Mode Mode
	SHA  string
}

// Signature identifies the author of a commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitSpec describes a commit to create.
type CommitSpec struct {
	Message string
	Tree    string
	Parents []string
	// Author is optional; hosts fill in their own identity when nil.
	Author *Signature
}

// Commit is a commit object read back from the host.
type Commit struct {
	SHA     string
	Tree    string
	Parents []string
	Message string
}

// Host is the subset of a git hosting API needed to build commits without a
// working tree. Implementations wrap transport failures with ErrTransient so
// callers can decide what to retry.
type Host interface {
	// GetRepository returns ErrNotFound when the repository does not exist.
	GetRepository(ctx context.Context, name string) (*Repository, error)

	// CreateRepository creates the repository and bootstraps an initial commit
	// on its default branch. Returns ErrAlreadyExists if it already exists.
	CreateRepository(ctx context.Context, spec RepositorySpec) (*Repository, error)

	// GetBranch returns the tip commit SHA of the branch, or ErrNotFound.
	GetBranch(ctx context.Context, repo *Repository, branch string) (string, error)

	// CreateBranch points a new branch at sha. Returns ErrAlreadyExists if
	// the branch exists.
	CreateBranch(ctx context.Context, repo *Repository, branch, sha string) error

	// UpdateBranch moves branch from oldSHA to newSHA atomically, returning
	// ErrConflict if the branch no longer points at oldSHA.
	UpdateBranch(ctx context.Context, repo *Repository, branch, oldSHA, newSHA string) error

	GetCommit(ctx context.Context, repo *Repository, sha string) (*Commit, error)
	CreateCommit(ctx context.Context, repo *Repository, spec CommitSpec) (string, error)

	CreateBlob(ctx context.Context, repo *Repository, content []byte) (string, error)
	GetBlob(ctx context.Context, repo *Repository, sha string) ([]byte, error)

	// CreateTree builds a tree from entries. When baseTree is non-empty the
	// entries are layered over it; otherwise the tree holds only entries.
	CreateTree(ctx context.Context, repo *Repository, baseTree string, entries []TreeEntry) (string, error)

	// GetTree lists every blob reachable from the tree, recursively.
	GetTree(ctx context.Context, repo *Repository, sha string) ([]TreeEntry, error)

	// BranchURL returns a browsable URL for the branch.
	BranchURL(repo *Repository, branch string) string
}

// IsTransient reports whether err is marked as retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
