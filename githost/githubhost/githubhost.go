/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package githubhost implements githost.Host over the GitHub Git Data API.
package githubhost

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"github.com/vivek31singh/coding-agent/githost"
)

// Host talks to GitHub on behalf of a single owner.
type Host struct {
	client *github.Client
	org    string

	ownerOnce sync.Once
	owner     string
	ownerErr  error
}

var _ githost.Host = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithOwner pins the repository owner. Without it the owner is resolved
// from the authenticated user on first use.
func WithOwner(owner string) Option {
	return func(h *Host) {
		h.owner = owner
	}
}

// WithOrganization creates repositories under org instead of the
// authenticated user. It also becomes the owner for lookups.
func WithOrganization(org string) Option {
	return func(h *Host) {
		h.org = org
		h.owner = org
	}
}

// New wraps a configured go-github client.
func New(client *github.Client, opts ...Option) *Host {
	h := &Host{client: client}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Owner returns the owner used for repository lookups.
func (h *Host) Owner(ctx context.Context) (string, error) {
	h.ownerOnce.Do(func() {
		if h.owner != "" {
			return
		}
		user, _, err := h.client.Users.Get(ctx, "")
		if err != nil {
			h.ownerErr = classify(fmt.Errorf("resolving authenticated user: %w", err))
			return
		}
		h.owner = user.GetLogin()
		clog.FromContext(ctx).Infof("Resolved repository owner %q from token", h.owner)
	})
	return h.owner, h.ownerErr
}

// GetRepository implements githost.Host.
func (h *Host) GetRepository(ctx context.Context, name string) (*githost.Repository, error) {
	owner, err := h.Owner(ctx)
	if err != nil {
		return nil, err
	}
	repo, _, err := h.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classify(fmt.Errorf("getting repository %s/%s: %w", owner, name, err))
	}
	return toRepository(repo), nil
}

// CreateRepository implements githost.Host. GitHub bootstraps the default
// branch with an initial commit through auto_init.
func (h *Host) CreateRepository(ctx context.Context, spec githost.RepositorySpec) (*githost.Repository, error) {
	repo, _, err := h.client.Repositories.Create(ctx, h.org, &github.Repository{
		Name:        github.Ptr(spec.Name),
		Description: github.Ptr(spec.Description),
		Private:     github.Ptr(spec.Private),
		AutoInit:    github.Ptr(true),
	})
	if err != nil {
		return nil, classify(fmt.Errorf("creating repository %s: %w", spec.Name, err))
	}
	clog.FromContext(ctx).Infof("Created repository %s", repo.GetFullName())
	return toRepository(repo), nil
}

// GetBranch implements githost.Host.
func (h *Host) GetBranch(ctx context.Context, repo *githost.Repository, branch string) (string, error) {
	ref, _, err := h.client.Git.GetRef(ctx, repo.Owner, repo.Name, "heads/"+branch)
	if err != nil {
		return "", classify(fmt.Errorf("getting branch %q: %w", branch, err))
	}
	return ref.GetObject().GetSHA(), nil
}

// CreateBranch implements githost.Host.
func (h *Host) CreateBranch(ctx context.Context, repo *githost.Repository, branch, sha string) error {
	_, _, err := h.client.Git.CreateRef(ctx, repo.Owner, repo.Name, github.CreateRef{
		Ref: "refs/heads/" + branch,
		SHA: sha,
	})
	if err != nil {
		return classify(fmt.Errorf("creating branch %q: %w", branch, err))
	}
	return nil
}

// UpdateBranch implements githost.Host. The update is never forced, so
// GitHub refuses anything that is not a fast-forward of the current tip.
func (h *Host) UpdateBranch(ctx context.Context, repo *githost.Repository, branch, oldSHA, newSHA string) error {
	// The read only turns the common stale case into a clear conflict. The
	// compare-and-swap comes from the non-forced update below: newSHA has
	// oldSHA as parent, so GitHub refuses it as not a fast forward once the
	// branch has moved past oldSHA.
	tip, err := h.GetBranch(ctx, repo, branch)
	if err != nil {
		return err
	}
	if tip != oldSHA {
		return fmt.Errorf("branch %q is at %s, expected %s: %w", branch, tip, oldSHA, githost.ErrConflict)
	}

	_, _, err = h.client.Git.UpdateRef(ctx, repo.Owner, repo.Name, "heads/"+branch, github.UpdateRef{
		SHA:   newSHA,
		Force: github.Ptr(false),
	})
	if err != nil {
		return classify(fmt.Errorf("updating branch %q: %w", branch, err))
	}
	return nil
}

// GetCommit implements githost.Host.
func (h *Host) GetCommit(ctx context.Context, repo *githost.Repository, sha string) (*githost.Commit, error) {
	c, _, err := h.client.Git.GetCommit(ctx, repo.Owner, repo.Name, sha)
	if err != nil {
		return nil, classify(fmt.Errorf("getting commit %s: %w", sha, err))
	}
	parents := make([]string, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, p.GetSHA())
	}
	return &githost.Commit{
		SHA:     c.GetSHA(),
		Tree:    c.GetTree().GetSHA(),
		Parents: parents,
		Message: c.GetMessage(),
	}, nil
}

// CreateCommit implements githost.Host.
func (h *Host) CreateCommit(ctx context.Context, repo *githost.Repository, spec githost.CommitSpec) (string, error) {
	parents := make([]*github.Commit, 0, len(spec.Parents))
	for _, p := range spec.Parents {
		parents = append(parents, &github.Commit{SHA: github.Ptr(p)})
	}
	commit := github.Commit{
		Message: github.Ptr(spec.Message),
		Tree:    &github.Tree{SHA: github.Ptr(spec.Tree)},
		Parents: parents,
	}
	if a := spec.Author; a != nil {
		commit.Author = &github.CommitAuthor{Name: github.Ptr(a.Name), Email: github.Ptr(a.Email)}
		if !a.When.IsZero() {
			commit.Author.Date = &github.Timestamp{Time: a.When}
		}
	}

	c, _, err := h.client.Git.CreateCommit(ctx, repo.Owner, repo.Name, commit, nil)
	if err != nil {
		return "", classify(fmt.Errorf("creating commit: %w", err))
	}
	return c.GetSHA(), nil
}

// CreateBlob implements githost.Host. Content is always sent base64 encoded
// so binary files survive the round trip.
func (h *Host) CreateBlob(ctx context.Context, repo *githost.Repository, content []byte) (string, error) {
	b, _, err := h.client.Git.CreateBlob(ctx, repo.Owner, repo.Name, github.Blob{
		Content:  github.Ptr(base64.StdEncoding.EncodeToString(content)),
		Encoding: github.Ptr("base64"),
	})
	if err != nil {
		return "", classify(fmt.Errorf("creating blob: %w", err))
	}
	return b.GetSHA(), nil
}

// GetBlob implements githost.Host.
func (h *Host) GetBlob(ctx context.Context, repo *githost.Repository, sha string) ([]byte, error) {
	content, _, err := h.client.Git.GetBlobRaw(ctx, repo.Owner, repo.Name, sha)
	if err != nil {
		return nil, classify(fmt.Errorf("getting blob %s: %w", sha, err))
	}
	return content, nil
}

// CreateTree implements githost.Host.
func (h *Host) CreateTree(ctx context.Context, repo *githost.Repository, baseTree string, entries []githost.TreeEntry) (string, error) {
	ghEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, e := range entries {
		ghEntries = append(ghEntries, &github.TreeEntry{
			Path: github.Ptr(e.Path),
			Mode: github.Ptr(string(e.Mode)),
			Type: github.Ptr("blob"),
			SHA:  github.Ptr(e.SHA),
		})
	}
	t, _, err := h.client.Git.CreateTree(ctx, repo.Owner, repo.Name, baseTree, ghEntries)
	if err != nil {
		return "", classify(fmt.Errorf("creating tree: %w", err))
	}
	return t.GetSHA(), nil
}

// GetTree implements githost.Host.
func (h *Host) GetTree(ctx context.Context, repo *githost.Repository, sha string) ([]githost.TreeEntry, error) {
	t, _, err := h.client.Git.GetTree(ctx, repo.Owner, repo.Name, sha, true)
	if err != nil {
		return nil, classify(fmt.Errorf("getting tree %s: %w", sha, err))
	}
	if t.GetTruncated() {
		return nil, fmt.Errorf("tree %s is too large to list recursively", sha)
	}
	var out []githost.TreeEntry
	for _, e := range t.Entries {
		if e.GetType() != "blob" {
			continue
		}
		out = append(out, githost.TreeEntry{
			Path: e.GetPath(),
			Mode: githost.Mode(e.GetMode()),
			SHA:  e.GetSHA(),
		})
	}
	return out, nil
}

// BranchURL implements githost.Host.
func (h *Host) BranchURL(repo *githost.Repository, branch string) string {
	return repo.HTMLURL + "/tree/" + branch
}

func toRepository(r *github.Repository) *githost.Repository {
	return &githost.Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
		HTMLURL:       r.GetHTMLURL(),
	}
}

// classify wraps err with the githost sentinel matching the GitHub failure.
func classify(err error) error {
	var (
		rle   *github.RateLimitError
		abuse *github.AbuseRateLimitError
		er    *github.ErrorResponse
		nerr  net.Error
	)
	switch {
	case errors.As(err, &rle), errors.As(err, &abuse):
		return fmt.Errorf("%w: %w", githost.ErrTransient, err)
	case errors.As(err, &er) && er.Response != nil:
		switch code := er.Response.StatusCode; {
		case code == http.StatusNotFound:
			return fmt.Errorf("%w: %w", githost.ErrNotFound, err)
		case code == http.StatusConflict:
			return fmt.Errorf("%w: %w", githost.ErrConflict, err)
		case code == http.StatusUnprocessableEntity:
			if containsAny(er, "already exists", "name already exists") {
				return fmt.Errorf("%w: %w", githost.ErrAlreadyExists, err)
			}
			if containsAny(er, "not a fast forward", "fast-forward") {
				return fmt.Errorf("%w: %w", githost.ErrConflict, err)
			}
		case code == http.StatusTooManyRequests, code >= 500:
			return fmt.Errorf("%w: %w", githost.ErrTransient, err)
		}
	case errors.As(err, &nerr):
		return fmt.Errorf("%w: %w", githost.ErrTransient, err)
	}
	return err
}

func containsAny(er *github.ErrorResponse, needles ...string) bool {
	texts := []string{strings.ToLower(er.Message)}
	for _, e := range er.Errors {
		texts = append(texts, strings.ToLower(e.Message), strings.ToLower(e.Code))
	}
	for _, t := range texts {
		for _, n := range needles {
			if strings.Contains(t, n) {
				return true
			}
		}
	}
	return false
}
