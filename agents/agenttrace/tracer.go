/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Tracer creates traces and receives them once complete.
type Tracer[T any] interface {
	NewTrace(ctx context.Context, request string) *Trace[T]
	RecordTrace(trace *Trace[T])
}

type tracerKey[T any] struct{}

// WithTracer returns a context carrying tracer for traces of type T.
func WithTracer[T any](ctx context.Context, tracer Tracer[T]) context.Context {
	return context.WithValue(ctx, tracerKey[T]{}, tracer)
}

// TracerFromContext returns the tracer for T on ctx, falling back to a
// tracer that logs completed traces.
func TracerFromContext[T any](ctx context.Context) Tracer[T] {
	if t, ok := ctx.Value(tracerKey[T]{}).(Tracer[T]); ok {
		return t
	}
	return NewDefaultTracer[T](ctx)
}

// StartTrace starts a trace with the tracer found on ctx.
func StartTrace[T any](ctx context.Context, request string) *Trace[T] {
	return TracerFromContext[T](ctx).NewTrace(ctx, request)
}

// TraceCallback receives completed traces.
type TraceCallback[T any] func(*Trace[T])

type byCodeTracer[T any] struct {
	callbacks []TraceCallback[T]
}

// ByCode returns a Tracer that hands every completed trace to callbacks.
func ByCode[T any](callbacks ...TraceCallback[T]) Tracer[T] {
	return &byCodeTracer[T]{callbacks: callbacks}
}

func (t *byCodeTracer[T]) NewTrace(ctx context.Context, request string) *Trace[T] {
	return newTrace[T](ctx, t, request)
}

// RecordTrace runs the callbacks in parallel and waits for all of them.
func (t *byCodeTracer[T]) RecordTrace(trace *Trace[T]) {
	var g errgroup.Group
	for _, cb := range t.callbacks {
		if cb == nil {
			continue
		}
		g.Go(func() error {
			cb(trace)
			return nil
		})
	}
	_ = g.Wait()
}
