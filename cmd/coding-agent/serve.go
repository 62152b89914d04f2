/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/vivek31singh/coding-agent/agents/catalog"
	"github.com/vivek31singh/coding-agent/agents/devtools"
	"github.com/vivek31singh/coding-agent/mcpserver"
)

func newServeCmd(a *app) *cobra.Command {
	var agent string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the development tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := catalog.Default(devtools.Names())
			if err != nil {
				return err
			}
			ag, ok := c.Agent(agent)
			if !ok {
				return fmt.Errorf("unknown agent %q", agent)
			}

			tools, err := a.tools(ctx, ag.Instructions)
			if err != nil {
				return err
			}
			for name := range tools {
				if !slices.Contains(ag.Tools, name) {
					delete(tools, name)
				}
			}

			srv, err := mcpserver.New(tools,
				mcpserver.WithAgent(ag.Name),
				mcpserver.WithVersion(version),
			)
			if err != nil {
				return err
			}
			return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "coder-agent", "Catalog agent whose tools are served")
	return cmd
}
