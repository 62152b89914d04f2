/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package params_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vivek31singh/coding-agent/agents/toolcall/params"
)

func TestExtract(t *testing.T) {
	args := map[string]any{
		"repository": "my-app",
		"empty":      "",
		"count":      float64(42),
		"big":        float64(9999999999),
		"fraction":   float64(1.5),
		"number":     json.Number("7"),
		"check":      true,
		"null":       nil,
	}

	t.Run("string", func(t *testing.T) {
		v, err := params.Extract[string](args, "repository")
		if err != nil {
			t.Fatal(err)
		}
		if v != "my-app" {
			t.Errorf("got %q, want %q", v, "my-app")
		}
	})

	t.Run("empty string", func(t *testing.T) {
		v, err := params.Extract[string](args, "empty")
		if err != nil {
			t.Fatal(err)
		}
		if v != "" {
			t.Errorf("got %q, want empty string", v)
		}
	})

	t.Run("bool", func(t *testing.T) {
		v, err := params.Extract[bool](args, "check")
		if err != nil {
			t.Fatal(err)
		}
		if !v {
			t.Error("got false, want true")
		}
	})

	t.Run("int from float64", func(t *testing.T) {
		v, err := params.Extract[int](args, "count")
		if err != nil {
			t.Fatal(err)
		}
		if v != 42 {
			t.Errorf("got %d, want 42", v)
		}
	})

	t.Run("int64 from float64", func(t *testing.T) {
		v, err := params.Extract[int64](args, "big")
		if err != nil {
			t.Fatal(err)
		}
		if v != 9999999999 {
			t.Errorf("got %d, want 9999999999", v)
		}
	})

	t.Run("int from json.Number", func(t *testing.T) {
		v, err := params.Extract[int](args, "number")
		if err != nil {
			t.Fatal(err)
		}
		if v != 7 {
			t.Errorf("got %d, want 7", v)
		}
	})

	t.Run("float64 from json.Number", func(t *testing.T) {
		v, err := params.Extract[float64](args, "number")
		if err != nil {
			t.Fatal(err)
		}
		if v != 7 {
			t.Errorf("got %v, want 7", v)
		}
	})

	for _, tc := range []struct {
		name    string
		extract func() error
		wantErr string
	}{{
		name:    "missing",
		extract: func() error { _, err := params.Extract[string](args, "missing"); return err },
		wantErr: "missing parameter is required",
	}, {
		name:    "null",
		extract: func() error { _, err := params.Extract[string](args, "null"); return err },
		wantErr: "null parameter is required",
	}, {
		name:    "fraction to int",
		extract: func() error { _, err := params.Extract[int](args, "fraction"); return err },
		wantErr: "fraction parameter must be of type int, got float64",
	}, {
		name:    "overflow int32",
		extract: func() error { _, err := params.Extract[int32](args, "big"); return err },
		wantErr: "big parameter must be of type int32, got float64",
	}, {
		name:    "wrong type",
		extract: func() error { _, err := params.Extract[bool](args, "repository"); return err },
		wantErr: "repository parameter must be of type bool, got string",
	}} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.extract()
			if err == nil {
				t.Fatal("expected error")
			}
			if diff := cmp.Diff(tc.wantErr, err.Error()); diff != "" {
				t.Errorf("error mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractOptional(t *testing.T) {
	args := map[string]any{
		"newBranch": "feature",
		"count":     float64(42),
		"chatId":    nil,
	}

	t.Run("present", func(t *testing.T) {
		v, err := params.ExtractOptional(args, "newBranch", "main")
		if err != nil {
			t.Fatal(err)
		}
		if v != "feature" {
			t.Errorf("got %q, want %q", v, "feature")
		}
	})

	t.Run("missing uses default", func(t *testing.T) {
		v, err := params.ExtractOptional(args, "missing", "default")
		if err != nil {
			t.Fatal(err)
		}
		if v != "default" {
			t.Errorf("got %q, want %q", v, "default")
		}
	})

	t.Run("null uses default", func(t *testing.T) {
		v, err := params.ExtractOptional(args, "chatId", "from-memory")
		if err != nil {
			t.Fatal(err)
		}
		if v != "from-memory" {
			t.Errorf("got %q, want %q", v, "from-memory")
		}
	})

	t.Run("int conversion", func(t *testing.T) {
		v, err := params.ExtractOptional(args, "count", 0)
		if err != nil {
			t.Fatal(err)
		}
		if v != 42 {
			t.Errorf("got %d, want 42", v)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		if _, err := params.ExtractOptional(args, "newBranch", 0); err == nil {
			t.Fatal("expected error for type mismatch")
		}
	})
}

func TestError(t *testing.T) {
	got := params.Error("project %s not found", "p-1")
	if diff := cmp.Diff(map[string]any{"error": "project p-1 not found"}, got); diff != "" {
		t.Errorf("Error() mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorWithContext(t *testing.T) {
	got := params.ErrorWithContext(errors.New("conflict"), map[string]any{"repository": "my-app"})
	want := map[string]any{"error": "conflict", "repository": "my-app"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ErrorWithContext() mismatch (-want +got):\n%s", diff)
	}

	got = params.ErrorWithContext(errors.New("conflict"), nil)
	if diff := cmp.Diff(map[string]any{"error": "conflict"}, got); diff != "" {
		t.Errorf("ErrorWithContext(nil) mismatch (-want +got):\n%s", diff)
	}
}
