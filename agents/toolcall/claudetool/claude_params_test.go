/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudetool

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/go-cmp/cmp"
)

func TestNewParams(t *testing.T) {
	tests := []struct {
		name    string
		input   json.RawMessage
		want    map[string]any
		wantErr bool
	}{{
		name:  "object",
		input: json.RawMessage(`{"repository": "my-app", "check": true}`),
		want:  map[string]any{"repository": "my-app", "check": true},
	}, {
		name:  "empty object",
		input: json.RawMessage(`{}`),
		want:  map[string]any{},
	}, {
		name:  "no input",
		input: nil,
		want:  map[string]any{},
	}, {
		name:  "null input",
		input: json.RawMessage(`null`),
		want:  map[string]any{},
	}, {
		name:    "invalid JSON",
		input:   json.RawMessage(`{invalid json`),
		wantErr: true,
	}, {
		name:    "array instead of object",
		input:   json.RawMessage(`["not", "an", "object"]`),
		wantErr: true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, errResp := NewParams(anthropic.ToolUseBlock{ID: "toolu_1", Name: "generate-code", Input: tt.input})
			if tt.wantErr {
				if errResp == nil {
					t.Fatal("NewParams() expected error but got none")
				}
				msg, _ := errResp["error"].(string)
				if !strings.HasPrefix(msg, "Failed to parse tool input:") {
					t.Errorf("error = %q, want parse failure", msg)
				}
				return
			}
			if errResp != nil {
				t.Fatalf("NewParams() unexpected error: %v", errResp)
			}
			if diff := cmp.Diff(tt.want, p.RawInputs()); diff != "" {
				t.Errorf("RawInputs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParams(t *testing.T) {
	p, errResp := NewParams(anthropic.ToolUseBlock{
		Input: json.RawMessage(`{"prompt": "landing page", "count": 3, "ratio": 0.5, "check": false}`),
	})
	if errResp != nil {
		t.Fatalf("NewParams() = %v", errResp)
	}

	if v, ok := p.Get("prompt"); !ok || v != "landing page" {
		t.Errorf("Get(prompt) = %v, %v", v, ok)
	}
	if _, ok := p.Get("missing"); ok {
		t.Error("Get(missing) reported present")
	}

	prompt, errResp := Param[string](p, "prompt")
	if errResp != nil || prompt != "landing page" {
		t.Errorf("Param[string](prompt) = %q, %v", prompt, errResp)
	}
	count, errResp := Param[int](p, "count")
	if errResp != nil || count != 3 {
		t.Errorf("Param[int](count) = %d, %v", count, errResp)
	}
	if _, errResp := Param[int](p, "ratio"); errResp == nil {
		t.Error("Param[int](ratio) accepted a fractional value")
	}
	if _, errResp := Param[string](p, "chatId"); errResp == nil {
		t.Error("Param[string](chatId) accepted a missing parameter")
	}

	check, errResp := OptionalParam(p, "check", true)
	if errResp != nil || check {
		t.Errorf("OptionalParam(check) = %v, %v", check, errResp)
	}
	branch, errResp := OptionalParam(p, "newBranch", "main")
	if errResp != nil || branch != "main" {
		t.Errorf("OptionalParam(newBranch) = %q, %v", branch, errResp)
	}
	if _, errResp := OptionalParam(p, "prompt", 0); errResp == nil {
		t.Error("OptionalParam(prompt, int) accepted a string")
	}

	// RawInputs returns a copy.
	raw := p.RawInputs()
	raw["prompt"] = "changed"
	if v, _ := p.Get("prompt"); v != "landing page" {
		t.Errorf("RawInputs() aliased the params: %v", v)
	}
}

func TestParamsConcurrent(t *testing.T) {
	p, _ := NewParams(anthropic.ToolUseBlock{Input: json.RawMessage(`{"repository": "my-app"}`)})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, errResp := Param[string](p, "repository"); errResp != nil || v != "my-app" {
				t.Errorf("Param() = %q, %v", v, errResp)
			}
		}()
	}
	wg.Wait()
}
