/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Inspect and delete code generation projects",
	}
	cmd.AddCommand(newProjectCheckCmd(a), newProjectDeleteCmd(a))
	return cmd
}

func newProjectCheckCmd(a *app) *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show the project a chat belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cg, err := a.codegen()
			if err != nil {
				return err
			}
			project, err := cg.GetProjectByChat(cmd.Context(), chatID)
			if err != nil {
				return fmt.Errorf("looking up project for chat %s: %w", chatID, err)
			}
			if project == nil {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"project": nil})
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"project": map[string]any{
				"id":     project.ID,
				"name":   project.Name,
				"webUrl": project.WebURL,
				"chatId": chatID,
			}})
		},
	}
	cmd.Flags().StringVar(&chatID, "chat-id", "", "Chat ID")
	_ = cmd.MarkFlagRequired("chat-id")
	return cmd
}

func newProjectDeleteCmd(a *app) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cg, err := a.codegen()
			if err != nil {
				return err
			}
			res, err := cg.DeleteProject(cmd.Context(), projectID)
			if err != nil {
				return fmt.Errorf("deleting project %s: %w", projectID, err)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"id":      res.ID,
				"object":  res.Object,
				"deleted": res.Deleted,
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project-id", "", "Project ID")
	_ = cmd.MarkFlagRequired("project-id")
	return cmd
}
