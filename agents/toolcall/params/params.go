/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package params

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
)

// Extract extracts a required parameter from args with type safety.
// Returns an error if the parameter is missing or cannot be converted to T.
func Extract[T any](args map[string]any, name string) (T, error) {
	var zero T

	value, exists := args[name]
	if !exists || value == nil {
		return zero, fmt.Errorf("%s parameter is required", name)
	}
	return convert[T](name, value)
}

// ExtractOptional extracts an optional parameter with a default value.
// A missing or null parameter yields the default.
func ExtractOptional[T any](args map[string]any, name string, defaultValue T) (T, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return defaultValue, nil
	}
	return convert[T](name, value)
}

func convert[T any](name string, value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	if v, ok := convertNumeric[T](value); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%s parameter must be of type %T, got %T", name, zero, value)
}

// convertNumeric handles the numeric shapes JSON decoders produce.
// Integer targets only accept integral values that fit the type.
func convertNumeric[T any](value any) (T, bool) {
	var zero T

	var f float64
	switch n := value.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		v, err := n.Float64()
		if err != nil {
			return zero, false
		}
		f = v
	default:
		return zero, false
	}

	switch any(zero).(type) {
	case float64:
		return any(f).(T), true
	case int:
		if f != math.Trunc(f) || f > math.MaxInt || f < math.MinInt {
			return zero, false
		}
		return any(int(f)).(T), true
	case int32:
		if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return zero, false
		}
		return any(int32(f)).(T), true
	case int64:
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return zero, false
		}
		return any(int64(f)).(T), true
	}
	return zero, false
}

// Error creates an error response map.
func Error(format string, args ...any) map[string]any {
	return map[string]any{
		"error": fmt.Sprintf(format, args...),
	}
}

// ErrorWithContext creates an error response with additional context fields.
func ErrorWithContext(err error, context map[string]any) map[string]any {
	response := map[string]any{
		"error": err.Error(),
	}
	maps.Copy(response, context)
	return response
}
