/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package workingmemory keeps the project each conversation thread last
// worked on.
//
// Callers own reads and writes: tools look up the thread's ProjectContext
// to fill in omitted arguments and save what code generation returns.
//
//	ctx = workingmemory.WithThread(ctx, sessionID)
//	pc, err := store.Get(ctx, workingmemory.ThreadFromContext(ctx))
package workingmemory
