/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"github.com/vivek31singh/coding-agent/commitbuilder"
)

type pushOptions struct {
	repository  string
	branch      string
	baseCommit  string
	message     string
	description string
	merge       bool
	stripRoot   bool

	archive   string
	chatID    string
	versionID string
}

type pushOutput struct {
	CommitSHA         string `json:"commitSha"`
	RepoURL           string `json:"repoUrl"`
	BranchURL         string `json:"branchUrl"`
	Branch            string `json:"branch"`
	CreatedRepository bool   `json:"createdRepository"`
}

func newPushCmd(a *app) *cobra.Command {
	var o pushOptions
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Commit a project archive to a GitHub repository",
		Long: `Commit the files of a zip archive to a repository as a single commit.

The archive is read from --archive, or downloaded from the code generation
service with --chat-id and --version-id. Missing repositories are created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.push(cmd, o)
		},
	}
	cmd.Flags().StringVar(&o.repository, "repository", "", "Repository name")
	cmd.Flags().StringVar(&o.message, "message", "", "Commit message")
	cmd.Flags().StringVar(&o.branch, "branch", "", "Branch to commit to (default: the repository's default branch)")
	cmd.Flags().StringVar(&o.baseCommit, "base-commit", "", "Fail unless the branch tip is this commit")
	cmd.Flags().StringVar(&o.description, "description", "", "Description for a newly created repository")
	cmd.Flags().BoolVar(&o.merge, "merge", false, "Keep files on the branch that the archive does not contain")
	cmd.Flags().BoolVar(&o.stripRoot, "strip-root", false, "Drop a single directory that wraps every archive entry (always on with --chat-id)")
	cmd.Flags().StringVar(&o.archive, "archive", "", "Path to a zip archive")
	cmd.Flags().StringVar(&o.chatID, "chat-id", "", "Chat whose version to download")
	cmd.Flags().StringVar(&o.versionID, "version-id", "", "Version to download")
	_ = cmd.MarkFlagRequired("repository")
	_ = cmd.MarkFlagRequired("message")
	cmd.MarkFlagsMutuallyExclusive("archive", "chat-id")
	cmd.MarkFlagsRequiredTogether("chat-id", "version-id")
	cmd.MarkFlagsOneRequired("archive", "chat-id")
	return cmd
}

func (a *app) push(cmd *cobra.Command, o pushOptions) error {
	ctx := cmd.Context()

	data, err := a.readArchive(cmd, o)
	if err != nil {
		return err
	}
	b, err := a.builder(ctx)
	if err != nil {
		return err
	}

	mode := commitbuilder.Replace
	if o.merge {
		mode = commitbuilder.Merge
	}
	// Generated versions wrap the project in one folder, so the chat path
	// always strips it.
	res, err := b.Build(ctx, data, commitbuilder.Target{
		Repository:  o.repository,
		Branch:      o.branch,
		BaseCommit:  o.baseCommit,
		Message:     o.message,
		Description: o.description,
		Mode:        mode,
		StripRoot:   o.stripRoot || o.chatID != "",
	})
	if err != nil {
		return fmt.Errorf("pushing to %s: %w", o.repository, err)
	}
	clog.FromContext(ctx).With("repository", o.repository).Infof("Pushed commit %s", res.CommitSHA)

	return writeJSON(cmd.OutOrStdout(), pushOutput{
		CommitSHA:         res.CommitSHA,
		RepoURL:           res.RepositoryURL,
		BranchURL:         res.BranchURL,
		Branch:            res.Branch,
		CreatedRepository: res.CreatedRepository,
	})
}

func (a *app) readArchive(cmd *cobra.Command, o pushOptions) ([]byte, error) {
	switch {
	case o.archive == "-":
		return io.ReadAll(cmd.InOrStdin())
	case o.archive != "":
		return os.ReadFile(o.archive)
	case o.chatID != "":
		cg, err := a.codegen()
		if err != nil {
			return nil, err
		}
		return cg.DownloadVersion(cmd.Context(), o.chatID, o.versionID)
	default:
		return nil, errors.New("one of --archive or --chat-id is required")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
