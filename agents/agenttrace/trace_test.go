/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/attribute"
)

// recorder is a Tracer that keeps completed traces.
type recorder[T any] struct {
	mu     sync.Mutex
	traces []*Trace[T]
}

func (r *recorder[T]) NewTrace(ctx context.Context, request string) *Trace[T] {
	return newTrace[T](ctx, r, request)
}

func (r *recorder[T]) RecordTrace(trace *Trace[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traces = append(r.traces, trace)
}

func TestTracerFromContext(t *testing.T) {
	ctx := context.Background()
	rec := &recorder[string]{}

	if got := TracerFromContext[string](WithTracer[string](ctx, rec)); got != rec {
		t.Errorf("TracerFromContext() = %v, want recorder", got)
	}
	if got := TracerFromContext[string](ctx); got == nil {
		t.Error("TracerFromContext() without tracer = nil, want default tracer")
	}

	// Tracers are keyed by result type.
	ints := &recorder[int]{}
	ctx = WithTracer[int](WithTracer[string](ctx, rec), ints)
	if got := TracerFromContext[string](ctx); got != rec {
		t.Errorf("string tracer = %v, want recorder", got)
	}
	if got := TracerFromContext[int](ctx); got != ints {
		t.Errorf("int tracer = %v, want int recorder", got)
	}
}

func TestTraceRecordsToolCalls(t *testing.T) {
	rec := &recorder[string]{}
	ctx := WithTracer[string](context.Background(), rec)
	ctx = WithExecutionContext(ctx, ExecutionContext{ThreadID: "thread-1", Agent: "coder-agent", Surface: "mcp"})

	trace := StartTrace[string](ctx, "generate-code")
	if trace.ExecContext.ThreadID != "thread-1" {
		t.Errorf("ThreadID = %q, want thread-1", trace.ExecContext.ThreadID)
	}

	tc := trace.StartToolCall("c1", "generate-code", map[string]any{"prompt": "landing page"})
	tc.Complete(map[string]any{"chatId": "chat-1"}, nil)
	trace.BadToolCall("c2", "delete-project", nil, errors.New("projectId parameter is required"))

	if len(rec.traces) != 0 {
		t.Fatalf("recorded %d traces before completion, want 0", len(rec.traces))
	}
	trace.Complete("ok", nil)

	if len(rec.traces) != 1 || rec.traces[0] != trace {
		t.Fatalf("recorded traces = %v, want the completed trace", rec.traces)
	}
	got := make([]string, 0, len(trace.ToolCalls))
	for _, c := range trace.ToolCalls {
		got = append(got, c.Name)
	}
	if diff := cmp.Diff([]string{"generate-code", "delete-project"}, got); diff != "" {
		t.Errorf("tool calls mismatch (-want +got):\n%s", diff)
	}
	if trace.ToolCalls[1].Error == nil {
		t.Error("bad tool call has no error")
	}
	if trace.Duration() < 0 || tc.Duration() < 0 {
		t.Error("negative duration")
	}
}

func TestTraceString(t *testing.T) {
	trace := ByCode[string]().NewTrace(
		WithExecutionContext(context.Background(), ExecutionContext{ThreadID: "t-9"}),
		"push-files-as-commit",
	)
	tc := trace.StartToolCall("c1", "push-files-as-commit", map[string]any{
		"repository":    "my-app",
		"commitMessage": strings.Repeat("x", 300),
	})
	tc.Complete(nil, errors.New("conflict"))
	trace.Complete("", errors.New("push failed"))

	s := trace.String()
	for _, want := range []string{
		"Request: \"push-files-as-commit\"",
		"Thread: t-9",
		"Tool Calls (1):",
		"repository: my-app",
		"Error: conflict",
		"Error: push failed",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, strings.Repeat("x", 200)) {
		t.Error("String() did not truncate a long parameter")
	}
}

func TestByCodeRunsCallbacksInParallel(t *testing.T) {
	started := make(chan struct{}, 3)
	proceed := make(chan struct{})
	cb := func(*Trace[string]) {
		started <- struct{}{}
		<-proceed
	}
	trace := ByCode[string](cb, nil, cb, cb).NewTrace(context.Background(), "r")

	done := make(chan struct{})
	go func() {
		trace.Complete("x", nil)
		close(done)
	}()

	timeout := time.After(time.Second)
	for range 3 {
		select {
		case <-started:
		case <-timeout:
			t.Fatal("callbacks did not start concurrently")
		}
	}
	close(proceed)
	<-done
}

func TestEnrichAttributes(t *testing.T) {
	base := []attribute.KeyValue{attribute.String("tool", "generate-code")}
	got := ExecutionContext{ThreadID: "unbounded", Agent: "coder-agent", Surface: "cli"}.EnrichAttributes(base)
	want := []attribute.KeyValue{
		attribute.String("tool", "generate-code"),
		attribute.String("agent", "coder-agent"),
		attribute.String("surface", "cli"),
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b attribute.KeyValue) bool { return a == b })); diff != "" {
		t.Errorf("EnrichAttributes() mismatch (-want +got):\n%s", diff)
	}
	if len(base) != 1 {
		t.Error("EnrichAttributes() modified its input")
	}
	if got := GetExecutionContext(context.Background()); got != (ExecutionContext{}) {
		t.Errorf("GetExecutionContext() = %+v, want zero", got)
	}
}
