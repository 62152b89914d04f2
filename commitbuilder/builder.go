/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commitbuilder

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/vivek31singh/coding-agent/archive"
	"github.com/vivek31singh/coding-agent/githost"
	"github.com/vivek31singh/coding-agent/retry"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel blob uploads when not configured.
const DefaultConcurrency = 8

// Mode selects how the archive relates to the files already on the branch.
type Mode int

const (
	// Replace makes the new tree hold exactly the archive entries.
	Replace Mode = iota
	// Merge layers the archive entries over the parent tree.
	Merge
)

func (m Mode) String() string {
	if m == Merge {
		return "merge"
	}
	return "replace"
}

// Target identifies where a commit goes and how it is described.
type Target struct {
	// Repository is the repository name under the host's owner.
	Repository string
	// Branch defaults to the repository's default branch.
	Branch string
	// BaseCommit, when set, must equal the branch tip at build time.
	BaseCommit string
	Message    string
	// Description is only used when the repository is created.
	Description string
	Mode        Mode
	Author      *githost.Signature
	// StripRoot removes a single directory wrapping every archive entry.
	// Build only; Commit takes entries as given.
	StripRoot bool
}

// Request is a Target plus the files to commit.
type Request struct {
	Target
	Entries []archive.Entry
}

// Result describes the commit a build produced.
type Result struct {
	CommitSHA     string
	RepositoryURL string
	BranchURL     string

	Branch            string
	ParentSHA         string
	TreeSHA           string
	CreatedRepository bool
	CreatedBranch     bool
}

// Builder turns archives into single commits on a remote branch. A Builder
// holds no per-build state and may be shared between goroutines.
type Builder struct {
	host          githost.Host
	concurrency   int
	retry         retry.Config
	limits        archive.Limits
	private       bool
	createMissing bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithConcurrency bounds the number of blob uploads in flight.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		b.concurrency = n
	}
}

// WithRetry configures retries of host reads. Writes are never retried.
func WithRetry(cfg retry.Config) Option {
	return func(b *Builder) {
		b.retry = cfg
	}
}

// WithLimits bounds archive size, entry count and nesting depth.
func WithLimits(l archive.Limits) Option {
	return func(b *Builder) {
		b.limits = l
	}
}

// WithPrivate sets the visibility of repositories the builder creates.
func WithPrivate(private bool) Option {
	return func(b *Builder) {
		b.private = private
	}
}

// WithCreateRepositories controls whether missing repositories are created.
// When disabled a missing repository fails with KindRepositoryNotFound.
func WithCreateRepositories(create bool) Option {
	return func(b *Builder) {
		b.createMissing = create
	}
}

// New creates a Builder that commits through host.
func New(host githost.Host, opts ...Option) (*Builder, error) {
	if host == nil {
		return nil, errors.New("host is required")
	}
	b := &Builder{
		host:          host,
		concurrency:   DefaultConcurrency,
		retry:         retry.DefaultConfig(),
		limits:        archive.DefaultLimits(),
		private:       true,
		createMissing: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", b.concurrency)
	}
	if err := b.retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	if err := b.limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}
	return b, nil
}

// Build extracts a zip archive held in memory and commits its files to the
// target. Nothing is written remotely unless the archive is valid.
func (b *Builder) Build(ctx context.Context, data []byte, target Target) (*Result, error) {
	start := time.Now()
	entries, err := archive.Extract(data, archive.WithLimits(b.limits), archive.WithStripRoot(target.StripRoot))
	if err != nil {
		aerr := archiveError(err)
		observeBuild(start, aerr)
		return nil, aerr
	}
	return b.Commit(ctx, Request{Target: target, Entries: entries})
}

// Commit creates one commit holding req.Entries on the target branch and
// moves the branch to it with a compare-and-swap.
func (b *Builder) Commit(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	defer func() { observeBuild(start, err) }()

	if err := b.validate(req); err != nil {
		return nil, err
	}

	log := clog.FromContext(ctx).With("repository", req.Repository)
	ctx = clog.WithLogger(ctx, log)

	repo, createdRepo, err := b.resolveRepository(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	branch := req.Branch
	if branch == "" {
		branch = repo.DefaultBranch
	}
	log = log.With("branch", branch)
	ctx = clog.WithLogger(ctx, log)

	parent, createdBranch, err := b.resolveBranch(ctx, repo, branch, createdRepo)
	if err != nil {
		return nil, err
	}
	if req.BaseCommit != "" && req.BaseCommit != parent {
		return nil, newError(KindConflict, "resolve_branch",
			fmt.Errorf("branch %q is at %s, expected base %s", branch, parent, req.BaseCommit))
	}

	parentCommit, err := read(ctx, b, "get_commit", func(ctx context.Context) (*githost.Commit, error) {
		return b.host.GetCommit(ctx, repo, parent)
	})
	if err != nil {
		return nil, hostError("get_commit", err)
	}

	tree := parentCommit.Tree
	if len(req.Entries) > 0 {
		tree, err = b.buildTree(ctx, repo, req, parentCommit.Tree)
		if err != nil {
			return nil, err
		}
	} else {
		log.Info("No entries, reusing parent tree")
	}

	commit, err := b.host.CreateCommit(ctx, repo, githost.CommitSpec{
		Message: req.Message,
		Tree:    tree,
		Parents: []string{parent},
		Author:  req.Author,
	})
	if err != nil {
		return nil, hostError("create_commit", err)
	}

	if err := b.host.UpdateBranch(ctx, repo, branch, parent, commit); err != nil {
		if errors.Is(err, githost.ErrNotFound) {
			return nil, newError(KindConflict, "update_branch", err)
		}
		return nil, hostError("update_branch", err)
	}

	log.Infof("Committed %d entries as %s on top of %s", len(req.Entries), commit, parent)
	return &Result{
		CommitSHA:         commit,
		RepositoryURL:     repo.HTMLURL,
		BranchURL:         b.host.BranchURL(repo, branch),
		Branch:            branch,
		ParentSHA:         parent,
		TreeSHA:           tree,
		CreatedRepository: createdRepo,
		CreatedBranch:     createdBranch,
	}, nil
}

// validate rejects requests that could not produce a well formed commit.
// It runs before anything is read from or written to the host.
func (b *Builder) validate(req Request) error {
	switch {
	case req.Repository == "":
		return newError(KindInvalidRequest, "validate", errors.New("repository is required"))
	case req.Message == "":
		return newError(KindInvalidRequest, "validate", errors.New("commit message is required"))
	case req.Mode != Replace && req.Mode != Merge:
		return newError(KindInvalidRequest, "validate", fmt.Errorf("unknown mode %d", req.Mode))
	}

	if len(req.Entries) > b.limits.MaxEntries {
		return newError(KindResourceLimitExceeded, "validate",
			fmt.Errorf("%d entries exceeds the limit of %d", len(req.Entries), b.limits.MaxEntries))
	}
	var total int64
	seen := make(map[string]struct{}, len(req.Entries))
	for _, e := range req.Entries {
		p, err := archive.CleanPath(e.Path)
		if err != nil {
			return newError(KindInvalidArchive, "validate", err)
		}
		if p != e.Path {
			return newError(KindInvalidArchive, "validate", fmt.Errorf("path %q is not normalized", e.Path))
		}
		if _, dup := seen[p]; dup {
			return newError(KindInvalidArchive, "validate", fmt.Errorf("duplicate path %q", p))
		}
		seen[p] = struct{}{}
		total += int64(len(e.Content))
		if total > b.limits.MaxTotalSize {
			return newError(KindResourceLimitExceeded, "validate",
				fmt.Errorf("content exceeds %d bytes", b.limits.MaxTotalSize))
		}
	}
	return nil
}

func (b *Builder) resolveRepository(ctx context.Context, t Target) (*githost.Repository, bool, error) {
	repo, err := read(ctx, b, "get_repository", func(ctx context.Context) (*githost.Repository, error) {
		return b.host.GetRepository(ctx, t.Repository)
	})
	switch {
	case err == nil:
		return repo, false, nil
	case !errors.Is(err, githost.ErrNotFound):
		return nil, false, hostError("get_repository", err)
	case !b.createMissing:
		return nil, false, newError(KindRepositoryNotFound, "get_repository", err)
	}

	log := clog.FromContext(ctx)
	log.Info("Repository does not exist, creating it")
	repo, err = b.host.CreateRepository(ctx, githost.RepositorySpec{
		Name:        t.Repository,
		Description: t.Description,
		Private:     b.private,
	})
	if errors.Is(err, githost.ErrAlreadyExists) {
		// Created concurrently by someone else; use theirs.
		log.Info("Repository appeared concurrently, reusing it")
		repo, err = read(ctx, b, "get_repository", func(ctx context.Context) (*githost.Repository, error) {
			return b.host.GetRepository(ctx, t.Repository)
		})
		if err != nil {
			return nil, false, hostError("get_repository", err)
		}
		return repo, false, nil
	}
	if err != nil {
		return nil, false, newError(KindRepositoryCreation, "create_repository", err)
	}
	return repo, true, nil
}

// resolveBranch returns the tip of branch, creating the branch from the
// default branch tip when it does not exist.
func (b *Builder) resolveBranch(ctx context.Context, repo *githost.Repository, branch string, fresh bool) (string, bool, error) {
	getTip := func(name string) (string, error) {
		isRetryable := githost.IsTransient
		if fresh {
			// Hosts may briefly report the bootstrap ref as missing.
			isRetryable = func(err error) bool {
				return githost.IsTransient(err) || errors.Is(err, githost.ErrNotFound)
			}
		}
		return retryRead(ctx, b, "get_branch", isRetryable, func(ctx context.Context) (string, error) {
			return b.host.GetBranch(ctx, repo, name)
		})
	}

	tip, err := getTip(branch)
	if err == nil {
		return tip, false, nil
	}
	if !errors.Is(err, githost.ErrNotFound) {
		return "", false, hostError("get_branch", err)
	}
	if branch == repo.DefaultBranch {
		return "", false, newError(KindInternal, "get_branch",
			fmt.Errorf("default branch %q has no commits: %w", branch, err))
	}

	base, err := getTip(repo.DefaultBranch)
	if err != nil {
		return "", false, hostError("get_branch", err)
	}
	clog.FromContext(ctx).Infof("Creating branch from %s at %s", repo.DefaultBranch, base)
	err = b.host.CreateBranch(ctx, repo, branch, base)
	if errors.Is(err, githost.ErrAlreadyExists) {
		tip, err := getTip(branch)
		if err != nil {
			return "", false, hostError("get_branch", err)
		}
		return tip, false, nil
	}
	if err != nil {
		return "", false, hostError("create_branch", err)
	}
	return base, true, nil
}

// buildTree uploads every distinct blob and creates the tree for req.
func (b *Builder) buildTree(ctx context.Context, repo *githost.Repository, req Request, parentTree string) (string, error) {
	type blob struct {
		hash    plumbing.Hash
		content []byte
	}
	var (
		unique []blob
		index  = make(map[plumbing.Hash]int)
		order  = make([]int, len(req.Entries))
	)
	for i, e := range req.Entries {
		h := plumbing.ComputeHash(plumbing.BlobObject, e.Content)
		n, ok := index[h]
		if !ok {
			n = len(unique)
			index[h] = n
			unique = append(unique, blob{hash: h, content: e.Content})
		}
		order[i] = n
	}

	shas := make([]string, len(unique))
	var uploaded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, bl := range unique {
		g.Go(func() error {
			sha, err := b.host.CreateBlob(gctx, repo, bl.content)
			if err != nil {
				return err
			}
			if sha != bl.hash.String() {
				return fmt.Errorf("host stored blob as %s, expected %s", sha, bl.hash)
			}
			shas[i] = sha
			uploaded.Add(int64(len(bl.content)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", hostError("create_blob", err)
	}
	blobCounter.Add(float64(len(unique)))
	blobBytes.Add(float64(uploaded.Load()))
	clog.FromContext(ctx).Infof("Uploaded %d blobs for %d entries", len(unique), len(req.Entries))

	entries := make([]githost.TreeEntry, len(req.Entries))
	for i, e := range req.Entries {
		mode := githost.ModeFile
		if e.Executable {
			mode = githost.ModeExecutable
		}
		entries[i] = githost.TreeEntry{Path: e.Path, Mode: mode, SHA: shas[order[i]]}
	}

	base := ""
	if req.Mode == Merge {
		base = parentTree
	}
	tree, err := b.host.CreateTree(ctx, repo, base, entries)
	if err != nil {
		return "", hostError("create_tree", err)
	}
	return tree, nil
}

func read[T any](ctx context.Context, b *Builder, op string, fn func(context.Context) (T, error)) (T, error) {
	return retryRead(ctx, b, op, githost.IsTransient, fn)
}

func retryRead[T any](ctx context.Context, b *Builder, op string, isRetryable func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	attempts := 0
	return retry.Do(ctx, b.retry, op, isRetryable, func(ctx context.Context) (T, error) {
		if attempts > 0 {
			retryCounter.WithLabelValues(op).Inc()
		}
		attempts++
		return fn(ctx)
	})
}
