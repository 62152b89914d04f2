/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/vivek31singh/coding-agent/agents/toolcall/claudetool"
	"github.com/vivek31singh/coding-agent/agents/toolcall/googletool"
	"github.com/vivek31singh/coding-agent/agents/toolcall/openaitool"
	"github.com/vivek31singh/coding-agent/mcpserver"
)

func newToolsCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the development tool definitions for a model provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tools, err := a.tools(cmd.Context(), "")
			if err != nil {
				return err
			}

			var out any
			switch format {
			case "mcp":
				defs := make([]mcp.Tool, 0, len(tools))
				for _, name := range slices.Sorted(maps.Keys(tools)) {
					defs = append(defs, mcpserver.Definition(tools[name].Def))
				}
				out = defs
			case "anthropic":
				out = claudetool.ToolUnionParams(claudetool.Map(tools))
			case "gemini":
				out = googletool.Tool(googletool.Map(tools))
			case "openai":
				out = openaitool.Tools(openaitool.Map(tools))
			default:
				return fmt.Errorf("unknown format %q (want mcp, anthropic, gemini or openai)", format)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&format, "format", "mcp", "Definition format: mcp, anthropic, gemini or openai")
	return cmd
}
