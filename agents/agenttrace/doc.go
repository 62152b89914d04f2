/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records the tool calls agents make.

A Trace covers one request from an agent, typically a single MCP tool
invocation or CLI command, and collects a ToolCall per tool run. Both are
backed by OpenTelemetry spans. Completed traces go to the Tracer found on
the context; without one they are logged through clog.

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		ThreadID: "thread-1",
		Agent:    "coder-agent",
		Surface:  "mcp",
	})

	trace := agenttrace.StartTrace[string](ctx, "push-files-as-commit")
	tc := trace.StartToolCall("call-1", "push-files-as-commit", map[string]any{
		"repository": "my-app",
	})
	tc.Complete(map[string]any{"commitSHA": "abc123"}, nil)
	trace.Complete("done", nil)
*/
package agenttrace
