/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall/params"
)

// ToolCall is a provider-independent representation of a tool call.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Definition describes a tool's schema (name, description, parameters).
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Parameter describes a single tool parameter.
type Parameter struct {
	Name        string
	Type        string // "string", "integer", "boolean", "number"
	Description string
	Required    bool
}

var toolName = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Validate checks that the definition can be offered to every provider.
func (d Definition) Validate() error {
	if !toolName.MatchString(d.Name) {
		return fmt.Errorf("tool name %q must match %s", d.Name, toolName)
	}
	if d.Description == "" {
		return fmt.Errorf("tool %s: description is required", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("tool %s: parameter name is required", d.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("tool %s: duplicate parameter %q", d.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
		switch p.Type {
		case "string", "integer", "boolean", "number":
		default:
			return fmt.Errorf("tool %s: parameter %s has unsupported type %q", d.Name, p.Name, p.Type)
		}
	}
	return nil
}

// Schema renders the parameters as a JSON schema object.
func (d Definition) Schema() (properties map[string]any, required []string) {
	properties = make(map[string]any, len(d.Parameters))
	for _, p := range d.Parameters {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return properties, required
}

// Tool defines a tool once with a single handler that works with any provider.
type Tool[Resp any] struct {
	Def     Definition
	Handler func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], result *Resp) map[string]any
}

// Call checks that every required parameter is present and then runs the
// handler. A call missing parameters is recorded on the trace as a bad tool
// call and never reaches the handler.
func (t Tool[Resp]) Call(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], result *Resp) map[string]any {
	var missing []error
	for _, p := range t.Def.Parameters {
		if !p.Required {
			continue
		}
		if v, ok := call.Args[p.Name]; !ok || v == nil {
			missing = append(missing, fmt.Errorf("%s parameter is required", p.Name))
		}
	}
	if err := errors.Join(missing...); err != nil {
		trace.BadToolCall(call.ID, call.Name, call.Args, err)
		return params.Error("%s", err)
	}
	resp := t.Handler(ctx, call, trace, result)
	if resp == nil {
		resp = map[string]any{}
	}
	return resp
}

// Param extracts a required parameter from the tool call args.
// On error, records a bad tool call on the trace and returns an error response.
func Param[T any](call ToolCall, trace interface {
	BadToolCall(string, string, map[string]any, error)
}, name string) (T, map[string]any) {
	v, err := params.Extract[T](call.Args, name)
	if err != nil {
		trace.BadToolCall(call.ID, call.Name, call.Args, err)
		return v, params.Error("%s", err)
	}
	return v, nil
}

// OptionalParam extracts an optional parameter from the tool call args.
func OptionalParam[T any](call ToolCall, name string, defaultValue T) (T, map[string]any) {
	v, err := params.ExtractOptional[T](call.Args, name, defaultValue)
	if err != nil {
		return v, params.Error("%s", err)
	}
	return v, nil
}
