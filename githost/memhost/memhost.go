/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package memhost implements githost.Host over in-memory go-git object
// storage. Objects are hashed exactly as git hashes them, so SHAs produced
// here match the ones a real remote would assign to the same content.
package memhost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/vivek31singh/coding-agent/githost"
)

const (
	defaultOwner  = "local"
	defaultBranch = "main"
	defaultBase   = "mem://"
)

var defaultSignature = githost.Signature{Name: "coding-agent", Email: "coding-agent@localhost"}

// Host is an in-memory git host. It is safe for concurrent use.
type Host struct {
	owner         string
	defaultBranch string
	baseURL       string
	now           func() time.Time

	mu    sync.Mutex
	repos map[string]*repository
}

type repository struct {
	mu   sync.Mutex
	meta githost.Repository
	st   *memory.Storage
}

var _ githost.Host = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithOwner sets the owner reported for every repository.
func WithOwner(owner string) Option {
	return func(h *Host) {
		h.owner = owner
	}
}

// WithDefaultBranch sets the branch bootstrapped in new repositories.
func WithDefaultBranch(branch string) Option {
	return func(h *Host) {
		h.defaultBranch = branch
	}
}

// WithBaseURL sets the prefix of repository URLs.
func WithBaseURL(base string) Option {
	return func(h *Host) {
		h.baseURL = strings.TrimSuffix(base, "/") + "/"
	}
}

// WithClock overrides the time source used for commit signatures.
func WithClock(now func() time.Time) Option {
	return func(h *Host) {
		h.now = now
	}
}

// New creates an empty Host.
func New(opts ...Option) *Host {
	h := &Host{
		owner:         defaultOwner,
		defaultBranch: defaultBranch,
		baseURL:       defaultBase,
		now:           time.Now,
		repos:         make(map[string]*repository),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) lookup(name string) (*repository, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.repos[name]
	if !ok {
		return nil, fmt.Errorf("repository %s/%s: %w", h.owner, name, githost.ErrNotFound)
	}
	return r, nil
}

func (h *Host) repo(meta *githost.Repository) (*repository, error) {
	if meta == nil {
		return nil, errors.New("nil repository")
	}
	return h.lookup(meta.Name)
}

// GetRepository implements githost.Host.
func (h *Host) GetRepository(ctx context.Context, name string) (*githost.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := h.lookup(name)
	if err != nil {
		return nil, err
	}
	meta := r.meta
	return &meta, nil
}

// CreateRepository implements githost.Host. The default branch is
// bootstrapped with a commit of the empty tree.
func (h *Host) CreateRepository(ctx context.Context, spec githost.RepositorySpec) (*githost.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Name == "" || strings.ContainsAny(spec.Name, "/ ") {
		return nil, fmt.Errorf("invalid repository name %q", spec.Name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.repos[spec.Name]; ok {
		return nil, fmt.Errorf("repository %s/%s: %w", h.owner, spec.Name, githost.ErrAlreadyExists)
	}

	r := &repository{
		meta: githost.Repository{
			Owner:         h.owner,
			Name:          spec.Name,
			DefaultBranch: h.defaultBranch,
			Private:       spec.Private,
			HTMLURL:       h.baseURL + h.owner + "/" + spec.Name,
		},
		st: memory.NewStorage(),
	}

	tree, err := writeTree(r.st, nil)
	if err != nil {
		return nil, fmt.Errorf("writing empty tree: %w", err)
	}
	initial, err := h.writeCommit(r.st, githost.CommitSpec{Message: "Initial commit", Tree: tree.String()})
	if err != nil {
		return nil, fmt.Errorf("writing initial commit: %w", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(h.defaultBranch), initial)
	if err := r.st.SetReference(ref); err != nil {
		return nil, fmt.Errorf("setting default branch: %w", err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, ref.Name())
	if err := r.st.SetReference(head); err != nil {
		return nil, fmt.Errorf("setting HEAD: %w", err)
	}

	h.repos[spec.Name] = r
	meta := r.meta
	return &meta, nil
}

// GetBranch implements githost.Host.
func (h *Host) GetBranch(ctx context.Context, meta *githost.Repository, branch string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := h.repo(meta)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, err := r.st.Reference(plumbing.NewBranchReferenceName(branch))
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("branch %q: %w", branch, githost.ErrNotFound)
	} else if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

// CreateBranch implements githost.Host.
func (h *Host) CreateBranch(ctx context.Context, meta *githost.Repository, branch, sha string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := h.repo(meta)
	if err != nil {
		return err
	}
	hash, err := parseHash(sha)
	if err != nil {
		return err
	}
	name := plumbing.NewBranchReferenceName(branch)
	if err := name.Validate(); err != nil || branch == "" {
		return fmt.Errorf("invalid branch name %q", branch)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := object.GetCommit(r.st, hash); err != nil {
		return fmt.Errorf("commit %s: %w", sha, githost.ErrNotFound)
	}
	if _, err := r.st.Reference(name); err == nil {
		return fmt.Errorf("branch %q: %w", branch, githost.ErrAlreadyExists)
	}
	return r.st.SetReference(plumbing.NewHashReference(name, hash))
}

// UpdateBranch implements githost.Host with a compare-and-swap on the ref.
func (h *Host) UpdateBranch(ctx context.Context, meta *githost.Repository, branch, oldSHA, newSHA string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := h.repo(meta)
	if err != nil {
		return err
	}
	oldHash, err := parseHash(oldSHA)
	if err != nil {
		return err
	}
	newHash, err := parseHash(newSHA)
	if err != nil {
		return err
	}
	name := plumbing.NewBranchReferenceName(branch)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := object.GetCommit(r.st, newHash); err != nil {
		return fmt.Errorf("commit %s: %w", newSHA, githost.ErrNotFound)
	}
	if _, err := r.st.Reference(name); err != nil {
		return fmt.Errorf("branch %q: %w", branch, githost.ErrNotFound)
	}
	err = r.st.CheckAndSetReference(
		plumbing.NewHashReference(name, newHash),
		plumbing.NewHashReference(name, oldHash),
	)
	if errors.Is(err, storage.ErrReferenceHasChanged) {
		return fmt.Errorf("branch %q moved from %s: %w", branch, oldSHA, githost.ErrConflict)
	}
	return err
}

// GetCommit implements githost.Host.
func (h *Host) GetCommit(ctx context.Context, meta *githost.Repository, sha string) (*githost.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := h.repo(meta)
	if err != nil {
		return nil, err
	}
	hash, err := parseHash(sha)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := object.GetCommit(r.st, hash)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", sha, githost.ErrNotFound)
	}
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return &githost.Commit{
		SHA:     c.Hash.String(),
		Tree:    c.TreeHash.String(),
		Parents: parents,
		Message: c.Message,
	}, nil
}

// CreateCommit implements githost.Host.
func (h *Host) CreateCommit(ctx context.Context, meta *githost.Repository, spec githost.CommitSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := h.repo(meta)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	hash, err := h.writeCommit(r.st, spec)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (h *Host) writeCommit(st *memory.Storage, spec githost.CommitSpec) (plumbing.Hash, error) {
	tree, err := parseHash(spec.Tree)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := object.GetTree(st, tree); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("tree %s: %w", spec.Tree, githost.ErrNotFound)
	}
	parents := make([]plumbing.Hash, 0, len(spec.Parents))
	for _, p := range spec.Parents {
		ph, err := parseHash(p)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if _, err := object.GetCommit(st, ph); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("parent %s: %w", p, githost.ErrNotFound)
		}
		parents = append(parents, ph)
	}

	sig := defaultSignature
	if spec.Author != nil {
		sig = *spec.Author
	}
	when := sig.When
	if when.IsZero() {
		when = h.now()
	}
	author := object.Signature{Name: sig.Name, Email: sig.Email, When: when}
	committer := object.Signature{Name: defaultSignature.Name, Email: defaultSignature.Email, When: when}

	c := &object.Commit{
		Author:       author,
		Committer:    committer,
		Message:      spec.Message,
		TreeHash:     tree,
		ParentHashes: parents,
	}
	obj := st.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding commit: %w", err)
	}
	return st.SetEncodedObject(obj)
}

// CreateBlob implements githost.Host.
func (h *Host) CreateBlob(ctx context.Context, meta *githost.Repository, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := h.repo(meta)
	if err != nil {
		return "", err
	}

	obj := r.st.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))
	w, err := obj.Writer()
	if err != nil {
		return "", err
	}
	if _, err := w.Write(content); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	hash, err := r.st.SetEncodedObject(obj)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// GetBlob implements githost.Host.
func (h *Host) GetBlob(ctx context.Context, meta *githost.Repository, sha string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := h.repo(meta)
	if err != nil {
		return nil, err
	}
	hash, err := parseHash(sha)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	obj, err := r.st.EncodedObject(plumbing.BlobObject, hash)
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", sha, githost.ErrNotFound)
	}
	rd, err := obj.Reader()
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return io.ReadAll(rd)
}

// CreateTree implements githost.Host.
func (h *Host) CreateTree(ctx context.Context, meta *githost.Repository, baseTree string, entries []githost.TreeEntry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := h.repo(meta)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	files := make(map[string]object.TreeEntry, len(entries))
	if baseTree != "" {
		base, err := h.listTree(r.st, baseTree)
		if err != nil {
			return "", err
		}
		for _, e := range base {
			files[e.Path] = object.TreeEntry{Name: e.Path, Mode: toFileMode(e.Mode), Hash: plumbing.NewHash(e.SHA)}
		}
	}
	for _, e := range entries {
		if err := validPath(e.Path); err != nil {
			return "", err
		}
		hash, err := parseHash(e.SHA)
		if err != nil {
			return "", err
		}
		if err := r.st.HasEncodedObject(hash); err != nil {
			return "", fmt.Errorf("blob %s for %q: %w", e.SHA, e.Path, githost.ErrNotFound)
		}
		mode := toFileMode(e.Mode)
		if mode == filemode.Empty {
			return "", fmt.Errorf("unsupported mode %q for %q", e.Mode, e.Path)
		}
		files[e.Path] = object.TreeEntry{Name: e.Path, Mode: mode, Hash: hash}
	}

	hash, err := writeTree(r.st, files)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// GetTree implements githost.Host.
func (h *Host) GetTree(ctx context.Context, meta *githost.Repository, sha string) ([]githost.TreeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := h.repo(meta)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return h.listTree(r.st, sha)
}

func (h *Host) listTree(st *memory.Storage, sha string) ([]githost.TreeEntry, error) {
	hash, err := parseHash(sha)
	if err != nil {
		return nil, err
	}
	tree, err := object.GetTree(st, hash)
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", sha, githost.ErrNotFound)
	}

	var out []githost.TreeEntry
	err = tree.Files().ForEach(func(f *object.File) error {
		out = append(out, githost.TreeEntry{
			Path: f.Name,
			Mode: fromFileMode(f.Mode),
			SHA:  f.Hash.String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking tree %s: %w", sha, err)
	}
	return out, nil
}

// BranchURL implements githost.Host.
func (h *Host) BranchURL(repo *githost.Repository, branch string) string {
	return repo.HTMLURL + "/tree/" + branch
}

// Commits returns the number of commits reachable from the branch tip by
// following first parents.
func (h *Host) Commits(meta *githost.Repository, branch string) (int, error) {
	r, err := h.repo(meta)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, err := r.st.Reference(plumbing.NewBranchReferenceName(branch))
	if err != nil {
		return 0, fmt.Errorf("branch %q: %w", branch, githost.ErrNotFound)
	}
	n := 0
	for hash := ref.Hash(); ; {
		c, err := object.GetCommit(r.st, hash)
		if err != nil {
			return 0, err
		}
		n++
		if len(c.ParentHashes) == 0 {
			return n, nil
		}
		hash = c.ParentHashes[0]
	}
}

// dir is a directory being assembled by writeTree.
type dir struct {
	files map[string]object.TreeEntry
	dirs  map[string]*dir
}

func newDir() *dir {
	return &dir{files: map[string]object.TreeEntry{}, dirs: map[string]*dir{}}
}

// writeTree stores the nested tree objects for a flat path -> entry map and
// returns the root hash.
func writeTree(st *memory.Storage, files map[string]object.TreeEntry) (plumbing.Hash, error) {
	root := newDir()
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		segs := strings.Split(p, "/")
		d := root
		for _, seg := range segs[:len(segs)-1] {
			if _, ok := d.files[seg]; ok {
				return plumbing.ZeroHash, fmt.Errorf("%q is both a file and a directory", seg)
			}
			next, ok := d.dirs[seg]
			if !ok {
				next = newDir()
				d.dirs[seg] = next
			}
			d = next
		}
		name := segs[len(segs)-1]
		if _, ok := d.dirs[name]; ok {
			return plumbing.ZeroHash, fmt.Errorf("%q is both a file and a directory", p)
		}
		e := files[p]
		e.Name = name
		d.files[name] = e
	}
	return root.write(st)
}

func (d *dir) write(st *memory.Storage) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(d.files)+len(d.dirs))
	for _, e := range d.files {
		entries = append(entries, e)
	}
	for name, sub := range d.dirs {
		hash, err := sub.write(st)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash})
	}
	sort.Sort(object.TreeEntrySorter(entries))

	obj := st.NewEncodedObject()
	if err := (&object.Tree{Entries: entries}).Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding tree: %w", err)
	}
	return st.SetEncodedObject(obj)
}

func parseHash(sha string) (plumbing.Hash, error) {
	if !plumbing.IsHash(sha) {
		return plumbing.ZeroHash, fmt.Errorf("invalid object id %q", sha)
	}
	return plumbing.NewHash(sha), nil
}

func validPath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") || path.Clean(p) != p {
		return fmt.Errorf("invalid tree path %q", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." || seg == ".git" {
			return fmt.Errorf("invalid tree path %q", p)
		}
	}
	return nil
}

func toFileMode(m githost.Mode) filemode.FileMode {
	switch m {
	case githost.ModeFile:
		return filemode.Regular
	case githost.ModeExecutable:
		return filemode.Executable
	default:
		return filemode.Empty
	}
}

func fromFileMode(m filemode.FileMode) githost.Mode {
	if m == filemode.Executable {
		return githost.ModeExecutable
	}
	return githost.ModeFile
}
