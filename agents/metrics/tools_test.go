/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestRecordToolCallEnrichesAttributes(t *testing.T) {
	m := NewToolsWithProvider(noop.NewMeterProvider(), "test")

	var got []attribute.KeyValue
	m.SetAttributeEnricher(func(_ context.Context, base []attribute.KeyValue) []attribute.KeyValue {
		got = append(base, attribute.String("agent", "coder-agent"))
		return got
	})
	m.RecordToolCall(context.Background(), "generate-code", 2*time.Second, true)

	if len(got) != 2 || got[0] != attribute.String("tool", "generate-code") {
		t.Errorf("enricher saw %v, want tool attribute first", got)
	}
}

func TestRecordToolCallWithoutEnricher(t *testing.T) {
	m := NewTools("test")
	m.RecordToolCall(context.Background(), "delete-project", time.Millisecond, false, attribute.Bool("dry_run", true))
}
