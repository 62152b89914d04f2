/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaitool

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/openai/openai-go"
	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/agents/toolcall/params"
)

// Metadata describes a tool available to an OpenAI chat completion agent.
type Metadata[Response any] struct {
	// Definition is the OpenAI function tool definition.
	Definition openai.ChatCompletionToolParam

	// Handler processes tool calls for this tool.
	Handler func(ctx context.Context, call openai.ChatCompletionMessageToolCall, trace *agenttrace.Trace[Response], result *Response) map[string]any
}

// FromTool converts a provider-independent tool to OpenAI metadata.
func FromTool[Response any](tool toolcall.Tool[Response]) Metadata[Response] {
	properties, required := tool.Def.Schema()
	if required == nil {
		required = []string{}
	}
	def := openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        tool.Def.Name,
			Description: openai.String(tool.Def.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}

	return Metadata[Response]{
		Definition: def,
		Handler: func(ctx context.Context, call openai.ChatCompletionMessageToolCall, trace *agenttrace.Trace[Response], result *Response) map[string]any {
			args, err := Arguments(call)
			if err != nil {
				trace.BadToolCall(call.ID, call.Function.Name, nil, err)
				return params.Error("%s", err)
			}
			return tool.Call(ctx, toolcall.ToolCall{
				ID:   call.ID,
				Name: call.Function.Name,
				Args: args,
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

// Tools returns the definitions in name order, ready for a chat completion
// request.
func Tools[Response any](tools map[string]Metadata[Response]) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, name := range slices.Sorted(maps.Keys(tools)) {
		out = append(out, tools[name].Definition)
	}
	return out
}

// Arguments decodes the JSON arguments of a tool call. Empty arguments
// decode to an empty map.
func Arguments(call openai.ChatCompletionMessageToolCall) (map[string]any, error) {
	args := map[string]any{}
	if call.Function.Arguments == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("failed to parse arguments for %s: %w", call.Function.Name, err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// Result encodes a handler response as the tool message answering call.
func Result(call openai.ChatCompletionMessageToolCall, resp map[string]any) (openai.ChatCompletionMessageParamUnion, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("encoding result of %s: %w", call.Function.Name, err)
	}
	return openai.ToolMessage(string(body), call.ID), nil
}
