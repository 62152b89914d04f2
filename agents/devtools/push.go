/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package devtools

import (
	"context"
	"errors"

	"github.com/chainguard-dev/clog"
	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/agents/toolcall/params"
	"github.com/vivek31singh/coding-agent/commitbuilder"
)

var errNoProject = errors.New("no chat in working memory; call generate-code first or pass chatId and latestVersionId")

func pushFilesAsCommitTool[Resp any](cb Callbacks) toolcall.Tool[Resp] {
	return toolcall.Tool[Resp]{
		Def: toolcall.Definition{
			Name: PushFilesAsCommit,
			Description: "Push a generated project version to a GitHub repository as a single commit. " +
				"Creates the repository (private) when it does not exist. chatId and latestVersionId default to working memory.",
			Parameters: []toolcall.Parameter{
				{Name: "repository", Type: "string", Description: "Repository name derived from the project content (e.g. animated-landing-page)", Required: true},
				{Name: "commitMessage", Type: "string", Description: "Conventional commit message (e.g. feat: add responsive navbar)", Required: true},
				{Name: "chatId", Type: "string", Description: "Chat whose version to push. Defaults to working memory."},
				{Name: "latestVersionId", Type: "string", Description: "Version to push. Defaults to working memory."},
				{Name: "newBranch", Type: "string", Description: "Branch to create or update instead of the default branch (e.g. feature/user-auth)"},
				{Name: "repoDescription", Type: "string", Description: "Description used when the repository is created"},
			},
		},
		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			repository, errResp := toolcall.Param[string](call, trace, "repository")
			if errResp != nil {
				return errResp
			}
			message, errResp := toolcall.Param[string](call, trace, "commitMessage")
			if errResp != nil {
				return errResp
			}
			chatID, errResp := toolcall.OptionalParam(call, "chatId", "")
			if errResp != nil {
				return errResp
			}
			versionID, errResp := toolcall.OptionalParam(call, "latestVersionId", "")
			if errResp != nil {
				return errResp
			}
			branch, errResp := toolcall.OptionalParam(call, "newBranch", "")
			if errResp != nil {
				return errResp
			}
			description, errResp := toolcall.OptionalParam(call, "repoDescription", "")
			if errResp != nil {
				return errResp
			}

			if chatID == "" || versionID == "" {
				saved := recall(ctx, cb.Memory)
				if chatID == "" {
					chatID = saved.ChatID
				}
				if versionID == "" && chatID == saved.ChatID {
					versionID = saved.LatestVersionID
				}
			}
			if chatID == "" || versionID == "" {
				trace.BadToolCall(call.ID, call.Name, call.Args, errNoProject)
				return params.Error("%s", errNoProject)
			}

			args := map[string]any{
				"repository":      repository,
				"commitMessage":   message,
				"chatId":          chatID,
				"latestVersionId": versionID,
				"newBranch":       branch,
			}
			// Generated versions wrap the project in one folder.
			target := commitbuilder.Target{
				Repository:  repository,
				Branch:      branch,
				Message:     message,
				Description: description,
				StripRoot:   true,
			}
			return run(ctx, cb, call, trace, args, func() (map[string]any, error) {
				return push(ctx, cb, chatID, versionID, target)
			})
		},
	}
}

func push(ctx context.Context, cb Callbacks, chatID, versionID string, target commitbuilder.Target) (map[string]any, error) {
	data, err := cb.CodeGen.DownloadVersion(ctx, chatID, versionID)
	if err != nil {
		return params.ErrorWithContext(err, map[string]any{"chatId": chatID, "latestVersionId": versionID}), err
	}

	res, err := cb.Commits.Build(ctx, data, target)
	if err != nil {
		return params.ErrorWithContext(err, map[string]any{
			"repository": target.Repository,
			"kind":       commitbuilder.KindOf(err).String(),
		}), err
	}

	clog.FromContext(ctx).With("repository", target.Repository).With("commit", res.CommitSHA).Info("Pushed files as commit")
	return map[string]any{
		"commitSHA":         res.CommitSHA,
		"repoUrl":           res.RepositoryURL,
		"branchUrl":         res.BranchURL,
		"branch":            res.Branch,
		"createdRepository": res.CreatedRepository,
	}, nil
}
