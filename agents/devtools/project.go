/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package devtools

import (
	"context"

	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/workingmemory"
)

func checkExistingProjectTool[Resp any](cb Callbacks) toolcall.Tool[Resp] {
	return toolcall.Tool[Resp]{
		Def: toolcall.Definition{
			Name:        CheckExistingProject,
			Description: "Check whether the chat in working memory belongs to a project. Returns the project, or null when there is none.",
			Parameters: []toolcall.Parameter{
				{Name: "check", Type: "boolean", Description: "Whether to check for an existing project (can be omitted)"},
			},
		},
		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			check, errResp := toolcall.OptionalParam(call, "check", true)
			if errResp != nil {
				return errResp
			}
			chatID := recall(ctx, cb.Memory).ChatID

			return run(ctx, cb, call, trace, map[string]any{"check": check, "chatId": chatID}, func() (map[string]any, error) {
				if !check || chatID == "" {
					return map[string]any{"project": nil}, nil
				}
				project, err := cb.CodeGen.GetProjectByChat(ctx, chatID)
				if err != nil {
					return nil, err
				}
				if project == nil {
					return map[string]any{"project": nil}, nil
				}
				return map[string]any{"project": map[string]any{
					"id":     project.ID,
					"name":   project.Name,
					"webUrl": project.WebURL,
					"chatId": chatID,
				}}, nil
			})
		},
	}
}

func deleteProjectTool[Resp any](cb Callbacks) toolcall.Tool[Resp] {
	return toolcall.Tool[Resp]{
		Def: toolcall.Definition{
			Name:        DeleteProject,
			Description: "Delete a project. This cannot be undone; confirm with the user first.",
			Parameters: []toolcall.Parameter{
				{Name: "projectId", Type: "string", Description: "The ID of the project to delete", Required: true},
			},
		},
		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			projectID, errResp := toolcall.Param[string](call, trace, "projectId")
			if errResp != nil {
				return errResp
			}

			return run(ctx, cb, call, trace, map[string]any{"projectId": projectID}, func() (map[string]any, error) {
				res, err := cb.CodeGen.DeleteProject(ctx, projectID)
				if err != nil {
					return nil, err
				}
				if res.Deleted {
					remember(ctx, cb.Memory, func(pc *workingmemory.ProjectContext) bool {
						if pc.ProjectID != projectID {
							return false
						}
						pc.ProjectID = ""
						return true
					})
				}
				return map[string]any{
					"id":      res.ID,
					"object":  res.Object,
					"deleted": res.Deleted,
				}, nil
			})
		},
	}
}
