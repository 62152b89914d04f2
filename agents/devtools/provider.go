/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package devtools

import (
	"context"
	"errors"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/metrics"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/agents/toolcall/params"
	"github.com/vivek31singh/coding-agent/codegen"
	"github.com/vivek31singh/coding-agent/commitbuilder"
	"github.com/vivek31singh/coding-agent/workingmemory"
)

// Tool names.
const (
	GenerateCode         = "generate-code"
	PushFilesAsCommit    = "push-files-as-commit"
	CheckExistingProject = "check-existing-project"
	DeleteProject        = "delete-project"
)

// Names lists every development tool name.
func Names() []string {
	return []string{GenerateCode, PushFilesAsCommit, CheckExistingProject, DeleteProject}
}

// CodeGenerator is the part of the code generation client the tools use.
type CodeGenerator interface {
	CreateChat(ctx context.Context, prompt, system string) (*codegen.Chat, error)
	SendMessage(ctx context.Context, chatID, prompt string) (*codegen.Chat, error)
	GetProjectByChat(ctx context.Context, chatID string) (*codegen.Project, error)
	DeleteProject(ctx context.Context, projectID string) (*codegen.DeleteResult, error)
	DownloadVersion(ctx context.Context, chatID, versionID string) ([]byte, error)
}

var _ CodeGenerator = (*codegen.Client)(nil)

// Committer turns an archive into a commit.
type Committer interface {
	Build(ctx context.Context, data []byte, target commitbuilder.Target) (*commitbuilder.Result, error)
}

var _ Committer = (*commitbuilder.Builder)(nil)

// Callbacks holds the collaborators behind the development tools. Tools
// whose collaborators are missing are not offered.
type Callbacks struct {
	CodeGen CodeGenerator
	Commits Committer
	Memory  workingmemory.Store

	// SystemPrompt is sent when a new chat is created.
	SystemPrompt string

	// Metrics, when set, counts every tool invocation.
	Metrics *metrics.Tools
}

// DevelopmentTools wraps a base tools type and adds development callbacks.
type DevelopmentTools[T any] struct {
	base T
	Callbacks
}

// NewDevelopmentTools creates a DevelopmentTools wrapping the given base tools.
func NewDevelopmentTools[T any](base T, cb Callbacks) DevelopmentTools[T] {
	return DevelopmentTools[T]{base: base, Callbacks: cb}
}

type developmentToolsProvider[Resp, T any] struct {
	baseProvider toolcall.ToolProvider[Resp, T]
}

var _ toolcall.ToolProvider[any, DevelopmentTools[any]] = (*developmentToolsProvider[any, any])(nil)

// NewProvider creates a provider that adds the development tools on top of
// the base provider's tools.
func NewProvider[Resp, T any](base toolcall.ToolProvider[Resp, T]) toolcall.ToolProvider[Resp, DevelopmentTools[T]] {
	return developmentToolsProvider[Resp, T]{baseProvider: base}
}

func (p developmentToolsProvider[Resp, T]) Tools(cb DevelopmentTools[T]) map[string]toolcall.Tool[Resp] {
	tools := p.baseProvider.Tools(cb.base)
	for name, t := range toolDefs[Resp](cb.Callbacks) {
		tools[name] = t
	}
	return tools
}

func toolDefs[Resp any](cb Callbacks) map[string]toolcall.Tool[Resp] {
	defs := make(map[string]toolcall.Tool[Resp])
	if cb.Memory == nil {
		cb.Memory = workingmemory.NewMemory()
	}
	if cb.CodeGen == nil {
		return defs
	}

	defs[GenerateCode] = generateCodeTool[Resp](cb)
	defs[CheckExistingProject] = checkExistingProjectTool[Resp](cb)
	defs[DeleteProject] = deleteProjectTool[Resp](cb)
	if cb.Commits != nil {
		defs[PushFilesAsCommit] = pushFilesAsCommitTool[Resp](cb)
	}
	return defs
}

// run records one tool execution on the trace and in metrics.
func run[Resp any](ctx context.Context, cb Callbacks, call toolcall.ToolCall, trace *agenttrace.Trace[Resp], args map[string]any, fn func() (map[string]any, error)) map[string]any {
	start := time.Now()
	tc := trace.StartToolCall(call.ID, call.Name, args)

	result, err := fn()
	if err != nil {
		clog.FromContext(ctx).With("tool", call.Name).With("error", err).Error("Tool call failed")
		if result == nil {
			result = params.ErrorWithContext(err, nil)
		}
	}
	tc.Complete(result, err)
	if cb.Metrics != nil {
		cb.Metrics.RecordToolCall(ctx, call.Name, time.Since(start), err != nil)
	}
	return result
}

// recall returns the thread's saved project. A missing thread or project
// yields the zero value.
func recall(ctx context.Context, store workingmemory.Store) workingmemory.ProjectContext {
	thread := workingmemory.ThreadFromContext(ctx)
	if thread == "" {
		return workingmemory.ProjectContext{}
	}
	pc, err := store.Get(ctx, thread)
	if err != nil {
		return workingmemory.ProjectContext{}
	}
	return pc
}

var errUnchanged = errors.New("working memory unchanged")

// remember applies fn to the thread's saved project. fn returns false to
// leave the record untouched. Failures are logged and otherwise ignored.
func remember(ctx context.Context, store workingmemory.Store, fn func(*workingmemory.ProjectContext) bool) {
	thread := workingmemory.ThreadFromContext(ctx)
	if thread == "" {
		clog.FromContext(ctx).Debug("No thread on context, skipping working memory update")
		return
	}
	if _, err := store.Update(ctx, thread, func(pc *workingmemory.ProjectContext) error {
		if !fn(pc) {
			return errUnchanged
		}
		return nil
	}); err != nil && !errors.Is(err, errUnchanged) {
		clog.FromContext(ctx).With("thread_id", thread).With("error", err).Warn("Failed to update working memory")
	}
}
