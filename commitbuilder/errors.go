/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commitbuilder

import (
	"context"
	"errors"
	"fmt"

	"github.com/vivek31singh/coding-agent/archive"
	"github.com/vivek31singh/coding-agent/githost"
)

// Kind classifies why a build failed.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindInvalidArchive
	KindResourceLimitExceeded
	KindRepositoryNotFound
	KindRepositoryCreation
	KindConflict
	KindTransientNetworkFailure
)

var kindNames = map[Kind]string{
	KindInternal:                "internal",
	KindInvalidRequest:          "invalid_request",
	KindInvalidArchive:          "invalid_archive",
	KindResourceLimitExceeded:   "resource_limit_exceeded",
	KindRepositoryNotFound:      "repository_not_found",
	KindRepositoryCreation:      "repository_creation",
	KindConflict:                "conflict",
	KindTransientNetworkFailure: "transient_network_failure",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrInternal                = errors.New("internal error")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrInvalidArchive          = errors.New("invalid archive")
	ErrResourceLimitExceeded   = errors.New("resource limit exceeded")
	ErrRepositoryNotFound      = errors.New("repository not found")
	ErrRepositoryCreation      = errors.New("repository creation failed")
	ErrConflict                = errors.New("branch moved concurrently")
	ErrTransientNetworkFailure = errors.New("transient network failure")
)

var sentinels = map[Kind]error{
	KindInternal:                ErrInternal,
	KindInvalidRequest:          ErrInvalidRequest,
	KindInvalidArchive:          ErrInvalidArchive,
	KindResourceLimitExceeded:   ErrResourceLimitExceeded,
	KindRepositoryNotFound:      ErrRepositoryNotFound,
	KindRepositoryCreation:      ErrRepositoryCreation,
	KindConflict:                ErrConflict,
	KindTransientNetworkFailure: ErrTransientNetworkFailure,
}

// Error is returned by every failed build.
type Error struct {
	Kind Kind
	// Op names the pipeline step that failed, e.g. "create_tree".
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// hostError maps a githost failure onto a Kind.
func hostError(op string, err error) *Error {
	switch {
	case errors.Is(err, githost.ErrConflict):
		return newError(KindConflict, op, err)
	case githost.IsTransient(err), errors.Is(err, context.DeadlineExceeded):
		return newError(KindTransientNetworkFailure, op, err)
	default:
		return newError(KindInternal, op, err)
	}
}

// archiveError maps an extraction failure onto a Kind.
func archiveError(err error) *Error {
	if errors.Is(err, archive.ErrTooLarge) {
		return newError(KindResourceLimitExceeded, "extract", err)
	}
	if errors.Is(err, archive.ErrInvalid) {
		return newError(KindInvalidArchive, "extract", err)
	}
	return newError(KindInternal, "extract", err)
}
