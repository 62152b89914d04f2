/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package devtools provides the development tools the coder agent calls:
// generate-code, push-files-as-commit, check-existing-project and
// delete-project.
//
// The tools share the calling thread's working memory. generate-code saves
// the chat, version and project it produced, and the other tools fall back
// to that record when an argument is omitted.
//
//	base := toolcall.NewEmptyToolsProvider[string]()
//	tools := devtools.NewProvider(base).Tools(devtools.NewDevelopmentTools(toolcall.EmptyTools{}, devtools.Callbacks{
//		CodeGen: client,
//		Commits: builder,
//		Memory:  workingmemory.NewMemory(),
//	}))
package devtools
