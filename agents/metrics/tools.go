/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Tools provides OpenTelemetry instruments for agent tool invocations.
// Instruments that fail to initialize are replaced with no-ops.
type Tools struct {
	calls        metric.Int64Counter
	failures     metric.Int64Counter
	duration     metric.Float64Histogram
	attrEnricher AttributeEnricher
}

// NewTools creates the instruments on the global meter provider.
func NewTools(meterName string) *Tools {
	return NewToolsWithProvider(otel.GetMeterProvider(), meterName)
}

// NewToolsWithProvider creates the instruments on mp.
func NewToolsWithProvider(mp metric.MeterProvider, meterName string) *Tools {
	meter := mp.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	calls, err := meter.Int64Counter("agent.tool.calls",
		metric.WithDescription("The number of tool invocations"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create tool call counter, metrics will be disabled", "error", err, "meter", meterName)
		calls = noop.Int64Counter{}
	}

	failures, err := meter.Int64Counter("agent.tool.failures",
		metric.WithDescription("The number of tool invocations that returned an error"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create tool failure counter, metrics will be disabled", "error", err, "meter", meterName)
		failures = noop.Int64Counter{}
	}

	duration, err := meter.Float64Histogram("agent.tool.duration",
		metric.WithDescription("Wall time of tool invocations"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create tool duration histogram, metrics will be disabled", "error", err, "meter", meterName)
		duration = noop.Float64Histogram{}
	}

	return &Tools{calls: calls, failures: failures, duration: duration}
}

// SetAttributeEnricher sets a hook that adds contextual attributes, such as
// the calling agent, to every measurement.
func (m *Tools) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

// RecordToolCall records one invocation of tool. failed marks invocations
// whose result carried an error.
func (m *Tools) RecordToolCall(ctx context.Context, tool string, took time.Duration, failed bool, attrs ...attribute.KeyValue) {
	base := []attribute.KeyValue{attribute.String("tool", tool)}
	if m.attrEnricher != nil {
		base = m.attrEnricher(ctx, base)
	}
	base = append(base, attrs...)
	opt := metric.WithAttributes(base...)

	m.calls.Add(ctx, 1, opt)
	if failed {
		m.failures.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, took.Seconds(), opt)
}
