/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package memhost_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vivek31singh/coding-agent/githost"
	"github.com/vivek31singh/coding-agent/githost/memhost"
)

const emptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestCreateRepository(t *testing.T) {
	ctx := context.Background()
	h := memhost.New(memhost.WithOwner("acme"), memhost.WithClock(fixedClock))

	if _, err := h.GetRepository(ctx, "site"); !errors.Is(err, githost.ErrNotFound) {
		t.Fatalf("GetRepository() error = %v, want ErrNotFound", err)
	}

	repo, err := h.CreateRepository(ctx, githost.RepositorySpec{Name: "site", Private: true})
	require.NoError(t, err)

	want := &githost.Repository{
		Owner:         "acme",
		Name:          "site",
		DefaultBranch: "main",
		Private:       true,
		HTMLURL:       "mem://acme/site",
	}
	if diff := cmp.Diff(want, repo); diff != "" {
		t.Errorf("CreateRepository() mismatch (-want +got):\n%s", diff)
	}

	if _, err := h.CreateRepository(ctx, githost.RepositorySpec{Name: "site"}); !errors.Is(err, githost.ErrAlreadyExists) {
		t.Errorf("second CreateRepository() error = %v, want ErrAlreadyExists", err)
	}

	tip, err := h.GetBranch(ctx, repo, "main")
	require.NoError(t, err)
	c, err := h.GetCommit(ctx, repo, tip)
	require.NoError(t, err)
	if c.Tree != emptyTreeSHA {
		t.Errorf("bootstrap tree = %s, want empty tree %s", c.Tree, emptyTreeSHA)
	}
	if len(c.Parents) != 0 {
		t.Errorf("bootstrap parents = %v, want none", c.Parents)
	}

	n, err := h.Commits(repo, "main")
	require.NoError(t, err)
	if n != 1 {
		t.Errorf("Commits() = %d, want 1", n)
	}
}

func TestBlobHashMatchesGit(t *testing.T) {
	ctx := context.Background()
	h := memhost.New()
	repo, err := h.CreateRepository(ctx, githost.RepositorySpec{Name: "r"})
	require.NoError(t, err)

	// printf 'hello\n' | git hash-object --stdin
	sha, err := h.CreateBlob(ctx, repo, []byte("hello\n"))
	require.NoError(t, err)
	if want := "ce013625030ba8dba906f756967f9e9ca394464a"; sha != want {
		t.Errorf("CreateBlob() = %s, want %s", sha, want)
	}

	got, err := h.GetBlob(ctx, repo, sha)
	require.NoError(t, err)
	if string(got) != "hello\n" {
		t.Errorf("GetBlob() = %q, want %q", got, "hello\n")
	}
}

func TestTreeAndCommitRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := memhost.New(memhost.WithClock(fixedClock))
	repo, err := h.CreateRepository(ctx, githost.RepositorySpec{Name: "r"})
	require.NoError(t, err)

	files := map[string]string{
		"README.md":         "# hi\n",
		"src/app/page.tsx":  "export default function Page() {}\n",
		"src/lib/utils.ts":  "export {}\n",
		"scripts/deploy.sh": "#!/bin/sh\n",
	}
	var entries []githost.TreeEntry
	for p, content := range files {
		sha, err := h.CreateBlob(ctx, repo, []byte(content))
		require.NoError(t, err)
		mode := githost.ModeFile
		if p == "scripts/deploy.sh" {
			mode = githost.ModeExecutable
		}
		entries = append(entries, githost.TreeEntry{Path: p, Mode: mode, SHA: sha})
	}

	tree, err := h.CreateTree(ctx, repo, "", entries)
	require.NoError(t, err)

	got, err := h.GetTree(ctx, repo, tree)
	require.NoError(t, err)
	byPath := func(s []githost.TreeEntry) {
		sort.Slice(s, func(i, j int) bool { return s[i].Path < s[j].Path })
	}
	byPath(entries)
	byPath(got)
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("GetTree() mismatch (-want +got):\n%s", diff)
	}

	parent, err := h.GetBranch(ctx, repo, "main")
	require.NoError(t, err)
	sha, err := h.CreateCommit(ctx, repo, githost.CommitSpec{
		Message: "add files",
		Tree:    tree,
		Parents: []string{parent},
		Author:  &githost.Signature{Name: "Dev", Email: "dev@example.com"},
	})
	require.NoError(t, err)

	c, err := h.GetCommit(ctx, repo, sha)
	require.NoError(t, err)
	want := &githost.Commit{SHA: sha, Tree: tree, Parents: []string{parent}, Message: "add files"}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("GetCommit() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateTreeWithBase(t *testing.T) {
	ctx := context.Background()
	h := memhost.New()
	repo, err := h.CreateRepository(ctx, githost.RepositorySpec{Name: "r"})
	require.NoError(t, err)

	a, err := h.CreateBlob(ctx, repo, []byte("a"))
	require.NoError(t, err)
	b, err := h.CreateBlob(ctx, repo, []byte("b"))
	require.NoError(t, err)

	base, err := h.CreateTree(ctx, repo, "", []githost.TreeEntry{
		{Path: "keep.txt", Mode: githost.ModeFile, SHA: a},
		{Path: "dir/over.txt", Mode: githost.ModeFile, SHA: a},
	})
	require.NoError(t, err)

	merged, err := h.CreateTree(ctx, repo, base, []githost.TreeEntry{
		{Path: "dir/over.txt", Mode: githost.ModeFile, SHA: b},
		{Path: "new.txt", Mode: githost.ModeFile, SHA: b},
	})
	require.NoError(t, err)

	got, err := h.GetTree(ctx, repo, merged)
	require.NoError(t, err)
	sort.Slice(got, func(i, j int) bool { return got[i].Path < got[j].Path })
	want := []githost.TreeEntry{
		{Path: "dir/over.txt", Mode: githost.ModeFile, SHA: b},
		{Path: "keep.txt", Mode: githost.ModeFile, SHA: a},
		{Path: "new.txt", Mode: githost.ModeFile, SHA: b},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged tree mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateTreeRejects(t *testing.T) {
	ctx := context.Background()
	h := memhost.New()
	repo, err := h.CreateRepository(ctx, githost.RepositorySpec{Name: "r"})
	require.NoError(t, err)
	blob, err := h.CreateBlob(ctx, repo, []byte("x"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		entries []githost.TreeEntry
	}{{
		name:    "traversal",
		entries: []githost.TreeEntry{{Path: "../x", Mode: githost.ModeFile, SHA: blob}},
	}, {
		name:    "absolute",
		entries: []githost.TreeEntry{{Path: "/x", Mode: githost.ModeFile, SHA: blob}},
	}, {
		name:    "unknown blob",
		entries: []githost.TreeEntry{{Path: "x", Mode: githost.ModeFile, SHA: emptyTreeSHA[:39] + "0"}},
	}, {
		name:    "bad mode",
		entries: []githost.TreeEntry{{Path: "x", Mode: "120000", SHA: blob}},
	}, {
		name: "file and directory",
		entries: []githost.TreeEntry{
			{Path: "a", Mode: githost.ModeFile, SHA: blob},
			{Path: "a/b", Mode: githost.ModeFile, SHA: blob},
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.CreateTree(ctx, repo, "", tt.entries); err == nil {
				t.Error("CreateTree() succeeded, want error")
			}
		})
	}
}

func TestBranches(t *testing.T) {
	ctx := context.Background()
	h := memhost.New()
	repo, err := h.CreateRepository(ctx, githost.RepositorySpec{Name: "r"})
	require.NoError(t, err)

	tip, err := h.GetBranch(ctx, repo, "main")
	require.NoError(t, err)

	if _, err := h.GetBranch(ctx, repo, "feature"); !errors.Is(err, githost.ErrNotFound) {
		t.Fatalf("GetBranch(feature) error = %v, want ErrNotFound", err)
	}
	require.NoError(t, h.CreateBranch(ctx, repo, "feature", tip))
	if err := h.CreateBranch(ctx, repo, "feature", tip); !errors.Is(err, githost.ErrAlreadyExists) {
		t.Errorf("second CreateBranch() error = %v, want ErrAlreadyExists", err)
	}

	next, err := h.CreateCommit(ctx, repo, githost.CommitSpec{Message: "next", Tree: emptyTreeSHA, Parents: []string{tip}})
	require.NoError(t, err)

	require.NoError(t, h.UpdateBranch(ctx, repo, "feature", tip, next))

	got, err := h.GetBranch(ctx, repo, "feature")
	require.NoError(t, err)
	if got != next {
		t.Errorf("feature tip = %s, want %s", got, next)
	}

	// The ref has moved on from tip, so a second swap from tip must fail.
	if err := h.UpdateBranch(ctx, repo, "feature", tip, next); !errors.Is(err, githost.ErrConflict) {
		t.Errorf("stale UpdateBranch() error = %v, want ErrConflict", err)
	}
	if err := h.UpdateBranch(ctx, repo, "missing", tip, next); !errors.Is(err, githost.ErrNotFound) {
		t.Errorf("UpdateBranch(missing) error = %v, want ErrNotFound", err)
	}

	if got, want := h.BranchURL(repo, "feature"), "mem://local/r/tree/feature"; got != want {
		t.Errorf("BranchURL() = %q, want %q", got, want)
	}
}
