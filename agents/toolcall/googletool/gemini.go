/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googletool

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/agents/toolcall/params"
	"google.golang.org/genai"
)

// Metadata describes a tool available to a Gemini agent.
type Metadata[Response any] struct {
	// Definition is the Gemini function declaration.
	Definition *genai.FunctionDeclaration

	// Handler processes function calls for this tool.
	Handler func(ctx context.Context, call *genai.FunctionCall, trace *agenttrace.Trace[Response], result *Response) *genai.FunctionResponse
}

var schemaTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"number":  genai.TypeNumber,
}

// FromTool converts a provider-independent tool to Gemini metadata.
func FromTool[Response any](tool toolcall.Tool[Response]) Metadata[Response] {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(tool.Def.Parameters)),
	}
	for _, p := range tool.Def.Parameters {
		schema.Properties[p.Name] = &genai.Schema{
			Type:        schemaTypes[p.Type],
			Description: p.Description,
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}

	return Metadata[Response]{
		Definition: &genai.FunctionDeclaration{
			Name:        tool.Def.Name,
			Description: tool.Def.Description,
			Parameters:  schema,
		},
		Handler: func(ctx context.Context, call *genai.FunctionCall, trace *agenttrace.Trace[Response], result *Response) *genai.FunctionResponse {
			args := maps.Clone(call.Args)
			if args == nil {
				args = map[string]any{}
			}
			return &genai.FunctionResponse{
				ID:   call.ID,
				Name: call.Name,
				Response: tool.Call(ctx, toolcall.ToolCall{
					ID:   call.ID,
					Name: call.Name,
					Args: args,
				}, trace, result),
			}
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

// Tool bundles the declarations in name order into a single genai.Tool.
func Tool[Response any](tools map[string]Metadata[Response]) *genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, name := range slices.Sorted(maps.Keys(tools)) {
		decls = append(decls, tools[name].Definition)
	}
	return &genai.Tool{FunctionDeclarations: decls}
}

// Param extracts a parameter from a Gemini function call with type safety.
// Returns the extracted value or a FunctionResponse error that can be sent back to the model.
func Param[T any](call *genai.FunctionCall, name string) (T, *genai.FunctionResponse) {
	v, err := params.Extract[T](call.Args, name)
	if err != nil {
		return v, Error(call, "%s", err)
	}
	return v, nil
}

// OptionalParam extracts an optional parameter from a Gemini function call.
func OptionalParam[T any](call *genai.FunctionCall, name string, defaultValue T) (T, *genai.FunctionResponse) {
	v, err := params.ExtractOptional[T](call.Args, name, defaultValue)
	if err != nil {
		return v, Error(call, "%s", err)
	}
	return v, nil
}

// Error creates a FunctionResponse with an error message.
func Error(call *genai.FunctionCall, format string, args ...any) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: params.Error(format, args...),
	}
}

// ErrorWithContext creates a FunctionResponse with an error and additional context.
func ErrorWithContext(call *genai.FunctionCall, err error, context map[string]any) *genai.FunctionResponse {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}
	return &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: params.ErrorWithContext(err, context),
	}
}
