/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workingmemory

import (
	"context"
	"errors"

	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/schema"
)

var (
	// ErrNotFound is returned when a thread has no saved project.
	ErrNotFound = errors.New("no project in working memory")

	// ErrNoThread is returned for operations without a thread ID.
	ErrNoThread = errors.New("thread ID is required")
)

// Project status values recorded by the code generation tool.
const (
	StatusCreated = "created"
	StatusUpdated = "updated"
)

// ProjectContext is the structured recall of the last project a thread
// worked on.
type ProjectContext struct {
	ChatID          string `json:"chatId,omitempty" jsonschema:"description=The ID of the code generation chat session"`
	ProjectID       string `json:"projectId,omitempty" jsonschema:"description=The ID of the generated project"`
	Title           string `json:"title,omitempty" jsonschema:"description=The title of the generated project"`
	WebURL          string `json:"webUrl,omitempty" jsonschema:"description=The web URL of the project"`
	LatestVersionID string `json:"latestVersionId,omitempty" jsonschema:"description=The ID of the latest version"`
	DemoURL         string `json:"demoUrl,omitempty" jsonschema:"description=The URL of the live demo"`
	Status          string `json:"status,omitempty" jsonschema:"description=Current status of the project (e.g. created or updated)"`
}

// Merge overwrites the fields of pc that are set in update.
func (pc *ProjectContext) Merge(update ProjectContext) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&pc.ChatID, update.ChatID)
	set(&pc.ProjectID, update.ProjectID)
	set(&pc.Title, update.Title)
	set(&pc.WebURL, update.WebURL)
	set(&pc.LatestVersionID, update.LatestVersionID)
	set(&pc.DemoURL, update.DemoURL)
	set(&pc.Status, update.Status)
}

// Store is a keyed store of thread ID to ProjectContext.
type Store interface {
	// Get returns the project saved for the thread, or ErrNotFound.
	Get(ctx context.Context, threadID string) (ProjectContext, error)

	// Put replaces the project saved for the thread.
	Put(ctx context.Context, threadID string, pc ProjectContext) error

	// Update applies fn to the saved project, starting from the zero
	// value when the thread has none. The change is discarded if fn
	// returns an error.
	Update(ctx context.Context, threadID string, fn func(*ProjectContext) error) (ProjectContext, error)

	// Delete forgets the thread. Deleting an unknown thread is not an error.
	Delete(ctx context.Context, threadID string) error
}

// WithThread returns a context carrying threadID.
func WithThread(ctx context.Context, threadID string) context.Context {
	ec := agenttrace.GetExecutionContext(ctx)
	ec.ThreadID = threadID
	return agenttrace.WithExecutionContext(ctx, ec)
}

// ThreadFromContext returns the thread ID carried by ctx, if any.
func ThreadFromContext(ctx context.Context) string {
	return agenttrace.GetExecutionContext(ctx).ThreadID
}

// Document is the working memory document as agents see it.
type Document struct {
	Project *ProjectContext `json:"v0Project,omitempty" jsonschema:"description=Metadata about the active project in this thread"`
}

// Schema returns the JSON schema of the working memory document.
func Schema() (map[string]any, error) {
	return schema.Map[Document]()
}
