/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package devtools

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/codegen"
	"github.com/vivek31singh/coding-agent/workingmemory"
)

func generateCodeTool[Resp any](cb Callbacks) toolcall.Tool[Resp] {
	return toolcall.Tool[Resp]{
		Def: toolcall.Definition{
			Name: GenerateCode,
			Description: "Generate a Next.js project from a detailed task prompt. Continues the project in working memory " +
				"unless newChat is set. Returns the generated files and saves the project to working memory.",
			Parameters: []toolcall.Parameter{
				{Name: "prompt", Type: "string", Description: "A comprehensive task description with full context", Required: true},
				{Name: "chatId", Type: "string", Description: "The ID of an existing chat to continue. Defaults to the chat in working memory."},
				{Name: "newChat", Type: "boolean", Description: "Start a new chat even if working memory holds one (default: false)"},
			},
		},
		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			prompt, errResp := toolcall.Param[string](call, trace, "prompt")
			if errResp != nil {
				return errResp
			}
			chatID, errResp := toolcall.OptionalParam(call, "chatId", "")
			if errResp != nil {
				return errResp
			}
			newChat, errResp := toolcall.OptionalParam(call, "newChat", false)
			if errResp != nil {
				return errResp
			}
			if chatID == "" && !newChat {
				chatID = recall(ctx, cb.Memory).ChatID
			}

			args := map[string]any{"prompt": prompt, "chatId": chatID}
			return run(ctx, cb, call, trace, args, func() (map[string]any, error) {
				return generate(ctx, cb, prompt, chatID)
			})
		},
	}
}

func generate(ctx context.Context, cb Callbacks, prompt, chatID string) (map[string]any, error) {
	log := clog.FromContext(ctx)

	var (
		chat   *codegen.Chat
		err    error
		status = workingmemory.StatusCreated
	)
	if chatID == "" {
		chat, err = cb.CodeGen.CreateChat(ctx, prompt, cb.SystemPrompt)
	} else {
		status = workingmemory.StatusUpdated
		chat, err = cb.CodeGen.SendMessage(ctx, chatID, prompt)
	}
	if err != nil {
		return nil, err
	}
	if chat.LatestVersion == nil {
		return nil, fmt.Errorf("chat %s returned no version", chat.ID)
	}

	title, webURL, projectID := chat.Name, chat.WebURL, chat.ProjectID
	if projectID == "" {
		project, err := cb.CodeGen.GetProjectByChat(ctx, chat.ID)
		if err != nil && !errors.Is(err, codegen.ErrNotFound) {
			log.With("chat_id", chat.ID).With("error", err).Warn("Failed to look up project for chat")
		}
		if project != nil {
			projectID = project.ID
			if project.Name != "" {
				title = project.Name
			}
			if project.WebURL != "" {
				webURL = project.WebURL
			}
		}
	}

	pc := workingmemory.ProjectContext{
		ChatID:          chat.ID,
		ProjectID:       projectID,
		Title:           title,
		WebURL:          webURL,
		LatestVersionID: chat.LatestVersion.ID,
		DemoURL:         chat.LatestVersion.DemoURL,
		Status:          status,
	}
	remember(ctx, cb.Memory, func(saved *workingmemory.ProjectContext) bool {
		if saved.ChatID != pc.ChatID {
			*saved = workingmemory.ProjectContext{}
		}
		saved.Merge(pc)
		return true
	})
	log.With("chat_id", chat.ID).With("version_id", pc.LatestVersionID).Info("Generated code")

	files := make([]any, 0, len(chat.LatestVersion.Files))
	for _, f := range chat.LatestVersion.Files {
		files = append(files, map[string]any{"name": f.Name, "content": f.Content})
	}
	return map[string]any{
		"chatId":          pc.ChatID,
		"projectId":       pc.ProjectID,
		"projectTitle":    pc.Title,
		"projectUrl":      pc.WebURL,
		"latestVersionId": pc.LatestVersionID,
		"demoUrl":         pc.DemoURL,
		"status":          status,
		"files":           files,
	}, nil
}
