/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// ExecutionContext identifies who is invoking tools.
type ExecutionContext struct {
	// ThreadID scopes working memory; one conversation with an agent.
	ThreadID string `json:"thread_id,omitempty"`
	// Agent is the catalog name of the calling agent, e.g. "coder-agent".
	Agent string `json:"agent,omitempty"`
	// Surface is how the tool was reached: "mcp" or "cli".
	Surface string `json:"surface,omitempty"`
}

// EnrichAttributes appends the bounded execution attributes to baseAttrs.
// ThreadID is left out of metrics; every conversation would add a series.
func (e ExecutionContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+2)
	copy(attrs, baseAttrs)
	if e.Agent != "" {
		attrs = append(attrs, attribute.String("agent", e.Agent))
	}
	if e.Surface != "" {
		attrs = append(attrs, attribute.String("surface", e.Surface))
	}
	return attrs
}

type contextKey struct{}

// WithExecutionContext attaches execCtx to ctx.
func WithExecutionContext(ctx context.Context, execCtx ExecutionContext) context.Context {
	return context.WithValue(ctx, contextKey{}, execCtx)
}

// GetExecutionContext returns the execution context on ctx, or the zero value.
func GetExecutionContext(ctx context.Context) ExecutionContext {
	if execCtx, ok := ctx.Value(contextKey{}).(ExecutionContext); ok {
		return execCtx
	}
	return ExecutionContext{}
}
