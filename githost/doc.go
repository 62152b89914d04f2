/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package githost defines the remote git hosting operations used to build
// commits directly from objects, without a clone or a working tree.
//
// Two implementations are provided:
//
//   - githubhost talks to the GitHub Git Data REST API.
//   - memhost keeps repositories in memory using go-git object storage. It
//     is useful for dry runs and as a faithful fake in tests.
//
// Errors are classified with the sentinels in this package:
//
//	if errors.Is(err, githost.ErrNotFound) { ... }
//	if githost.IsTransient(err) { ... }
package githost
