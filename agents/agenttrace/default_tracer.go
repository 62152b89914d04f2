/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// NewDefaultTracer returns a tracer that logs each completed trace to the
// logger on ctx.
func NewDefaultTracer[T any](ctx context.Context) Tracer[T] {
	logger := clog.FromContext(ctx)
	return ByCode(func(trace *Trace[T]) {
		failed := 0
		for _, tc := range trace.ToolCalls {
			if tc.Error != nil {
				failed++
			}
		}
		logger.With(
			"trace_id", trace.ID,
			"thread_id", trace.ExecContext.ThreadID,
			"duration_ms", trace.Duration().Milliseconds(),
			"tool_calls", len(trace.ToolCalls),
			"failed_tool_calls", failed,
		).Debug("Trace completed", "trace", trace.String())
	})
}
