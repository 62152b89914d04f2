/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package archive extracts zip containers entirely in memory, enforcing path
// safety and resource limits.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrInvalid is returned for corrupt containers and disallowed entry paths.
	ErrInvalid = errors.New("invalid archive")

	// ErrTooLarge is returned when the archive exceeds a configured limit.
	ErrTooLarge = errors.New("archive exceeds resource limits")
)

const (
	// DefaultMaxTotalSize is the default ceiling on the sum of uncompressed entry sizes.
	DefaultMaxTotalSize int64 = 100 << 20

	// DefaultMaxEntries is the default ceiling on the number of file entries.
	DefaultMaxEntries = 10000

	// DefaultMaxDepth is the default ceiling on path segments per entry.
	DefaultMaxDepth = 64
)

// Entry is a single file extracted from an archive.
type Entry struct {
	// Path is relative, forward-slash separated and never starts with '/'.
	Path       string
	Content    []byte
	Executable bool
}

// Limits bounds the resources Extract may consume.
type Limits struct {
	MaxTotalSize int64
	MaxEntries   int
	MaxDepth     int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxTotalSize: DefaultMaxTotalSize,
		MaxEntries:   DefaultMaxEntries,
		MaxDepth:     DefaultMaxDepth,
	}
}

// Validate checks that the limits have usable values.
func (l Limits) Validate() error {
	switch {
	case l.MaxTotalSize <= 0:
		return errors.New("max total size must be positive")
	case l.MaxEntries <= 0:
		return errors.New("max entries must be positive")
	case l.MaxDepth <= 0:
		return errors.New("max depth must be positive")
	}
	return nil
}

type options struct {
	limits    Limits
	stripRoot bool
}

// Option configures Extract.
type Option func(*options)

// WithLimits overrides the default resource limits.
func WithLimits(l Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithStripRoot controls whether a single top-level directory shared by every
// entry is removed from the extracted paths. Disabled by default, so paths
// round-trip exactly as archived.
func WithStripRoot(strip bool) Option {
	return func(o *options) {
		o.stripRoot = strip
	}
}

// Extract parses a zip container held in memory and returns its regular files
// in archive order. Nothing is written to disk.
func Extract(data []byte, opts ...Option) ([]Entry, error) {
	o := options{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.limits.Validate(); err != nil {
		return nil, fmt.Errorf("validating limits: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: reading container: %v", ErrInvalid, err)
	}

	// Check declared sizes and paths first so that obviously bad archives fail
	// before anything is decompressed.
	var declared uint64
	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			if escapesRoot(f.Name) {
				return nil, fmt.Errorf("%w: path %q escapes the extraction root", ErrInvalid, f.Name)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %q is not a regular file", ErrInvalid, f.Name)
		}
		files = append(files, f)
		if len(files) > o.limits.MaxEntries {
			return nil, fmt.Errorf("%w: more than %d entries", ErrTooLarge, o.limits.MaxEntries)
		}
		declared += f.UncompressedSize64
		if declared > uint64(o.limits.MaxTotalSize) {
			return nil, fmt.Errorf("%w: declared size exceeds %d bytes", ErrTooLarge, o.limits.MaxTotalSize)
		}
	}

	paths := make([]string, len(files))
	for i, f := range files {
		p, err := CleanPath(f.Name)
		if err != nil {
			return nil, err
		}
		if depth := strings.Count(p, "/") + 1; depth > o.limits.MaxDepth {
			return nil, fmt.Errorf("%w: %q is nested %d levels deep", ErrTooLarge, p, depth)
		}
		paths[i] = p
	}
	if o.stripRoot {
		paths = stripCommonRoot(paths)
	}
	if err := checkConflicts(paths); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	remaining := o.limits.MaxTotalSize
	for i, f := range files {
		p := paths[i]
		content, err := readFile(f, remaining)
		if err != nil {
			return nil, err
		}
		remaining -= int64(len(content))

		entries = append(entries, Entry{
			Path:       p,
			Content:    content,
			Executable: f.Mode()&0o111 != 0,
		})
	}
	return entries, nil
}

// readFile decompresses f, failing once more than budget bytes are produced.
// The header's declared size is not trusted.
func readFile(f *zip.File, budget int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %v", ErrInvalid, f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, budget+1))
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing %q: %v", ErrInvalid, f.Name, err)
	}
	if int64(len(content)) > budget {
		return nil, fmt.Errorf("%w: uncompressed content exceeds limit at %q", ErrTooLarge, f.Name)
	}
	return content, nil
}

// CleanPath normalizes an archive member name into a relative forward-slash
// path, rejecting absolute paths, any ".." segment and any ".git" segment.
func CleanPath(name string) (string, error) {
	p := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(p, "/") || (len(p) > 1 && p[1] == ':') {
		return "", fmt.Errorf("%w: absolute path %q", ErrInvalid, name)
	}
	if escapesRoot(p) {
		return "", fmt.Errorf("%w: path %q escapes the extraction root", ErrInvalid, name)
	}
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." || p == "" {
		return "", fmt.Errorf("%w: empty path %q", ErrInvalid, name)
	}
	if strings.IndexByte(p, 0) != -1 {
		return "", fmt.Errorf("%w: path %q contains NUL", ErrInvalid, name)
	}
	for _, seg := range strings.Split(p, "/") {
		// Git hosts refuse tree entries named .git in any letter case.
		if strings.EqualFold(seg, ".git") {
			return "", fmt.Errorf("%w: path %q contains a .git segment", ErrInvalid, name)
		}
	}
	return p, nil
}

// checkConflicts rejects duplicate paths and files that would have to be a
// directory for another entry.
func checkConflicts(paths []string) error {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: duplicate path %q", ErrInvalid, p)
		}
		seen[p] = struct{}{}
	}
	for _, p := range paths {
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			if _, ok := seen[dir]; ok {
				return fmt.Errorf("%w: %q is both a file and a directory", ErrInvalid, dir)
			}
		}
	}
	return nil
}

func escapesRoot(name string) bool {
	for _, seg := range strings.Split(strings.ReplaceAll(name, "\\", "/"), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// stripCommonRoot removes the first path segment when every path shares it
// and at least one path is nested below it.
func stripCommonRoot(paths []string) []string {
	if len(paths) == 0 {
		return paths
	}
	root, _, ok := strings.Cut(paths[0], "/")
	if !ok {
		return paths
	}
	prefix := root + "/"
	for _, p := range paths {
		if !strings.HasPrefix(p, prefix) {
			return paths
		}
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = strings.TrimPrefix(p, prefix)
	}
	return out
}
