/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudetool

import (
	"context"
	"maps"
	"slices"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
)

// Metadata describes a tool available to a Claude agent.
type Metadata[Response any] struct {
	// Definition is the Anthropic tool definition.
	Definition anthropic.ToolParam

	// Handler processes tool use blocks for this tool.
	Handler func(ctx context.Context, toolUse anthropic.ToolUseBlock, trace *agenttrace.Trace[Response], result *Response) map[string]any
}

// FromTool converts a provider-independent tool to Claude metadata.
func FromTool[Response any](tool toolcall.Tool[Response]) Metadata[Response] {
	properties, required := tool.Def.Schema()
	def := anthropic.ToolParam{
		Name:        tool.Def.Name,
		Description: anthropic.String(tool.Def.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: properties,
			Required:   required,
		},
	}

	return Metadata[Response]{
		Definition: def,
		Handler: func(ctx context.Context, toolUse anthropic.ToolUseBlock, trace *agenttrace.Trace[Response], result *Response) map[string]any {
			p, errResp := NewParams(toolUse)
			if errResp != nil {
				return errResp
			}
			return tool.Call(ctx, toolcall.ToolCall{
				ID:   toolUse.ID,
				Name: toolUse.Name,
				Args: p.RawInputs(),
			}, trace, result)
		},
	}
}

// Map converts a set of tools keyed by name.
func Map[Response any](tools map[string]toolcall.Tool[Response]) map[string]Metadata[Response] {
	out := make(map[string]Metadata[Response], len(tools))
	for name, tool := range tools {
		out[name] = FromTool(tool)
	}
	return out
}

// ToolUnionParams returns the definitions in name order, ready for a
// messages request.
func ToolUnionParams[Response any](tools map[string]Metadata[Response]) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, name := range slices.Sorted(maps.Keys(tools)) {
		def := tools[name].Definition
		out = append(out, anthropic.ToolUnionParam{OfTool: &def})
	}
	return out
}
