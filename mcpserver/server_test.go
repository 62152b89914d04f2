/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mcpserver_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/mcpserver"
	"github.com/vivek31singh/coding-agent/workingmemory"
)

type session struct{ id string }

func (s session) Initialize()                                         {}
func (s session) Initialized() bool                                   { return true }
func (s session) NotificationChannel() chan<- mcp.JSONRPCNotification { return make(chan mcp.JSONRPCNotification, 1) }
func (s session) SessionID() string                                   { return s.id }

func echoTool() toolcall.Tool[string] {
	return toolcall.Tool[string]{
		Def: toolcall.Definition{
			Name:        "echo",
			Description: "Echo a message with the calling thread",
			Parameters: []toolcall.Parameter{
				{Name: "message", Type: "string", Description: "Text to echo", Required: true},
				{Name: "loud", Type: "boolean", Description: "Upper-case the reply"},
			},
		},
		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[string], _ *string) map[string]any {
			msg, errResp := toolcall.Param[string](call, trace, "message")
			if errResp != nil {
				return errResp
			}
			return map[string]any{
				"message": msg,
				"thread":  workingmemory.ThreadFromContext(ctx),
				"surface": agenttrace.GetExecutionContext(ctx).Surface,
			}
		},
	}
}

func call(t *testing.T, s *mcpserver.Server, ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	st := s.MCP().GetTool(name)
	require.NotNil(t, st, "tool %s not registered", name)

	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := st.Handler(ctx, req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &body))
	return res, body
}

func TestToolCallUsesSessionThread(t *testing.T) {
	s, err := mcpserver.New(map[string]toolcall.Tool[string]{"echo": echoTool()}, mcpserver.WithThread("fallback"))
	require.NoError(t, err)

	ctx := s.MCP().WithContext(context.Background(), session{id: "session-1"})
	res, body := call(t, s, ctx, "echo", map[string]any{"message": "hi"})
	require.False(t, res.IsError)
	if diff := cmp.Diff(map[string]any{"message": "hi", "thread": "session-1", "surface": "mcp"}, body); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	_, body = call(t, s, context.Background(), "echo", map[string]any{"message": "hi"})
	require.Equal(t, "fallback", body["thread"])
}

func TestToolCallErrors(t *testing.T) {
	s, err := mcpserver.New(map[string]toolcall.Tool[string]{"echo": echoTool()})
	require.NoError(t, err)

	res, body := call(t, s, context.Background(), "echo", map[string]any{})
	require.True(t, res.IsError)
	require.Equal(t, "message parameter is required", body["error"])

	res, body = call(t, s, context.Background(), "echo", map[string]any{"message": 7})
	require.True(t, res.IsError)
	require.Contains(t, body["error"], "message")
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	bad := echoTool()
	bad.Def.Name = "has spaces"
	_, err := mcpserver.New(map[string]toolcall.Tool[string]{"bad": bad})
	require.Error(t, err)
}

func TestDefinition(t *testing.T) {
	got := mcpserver.Definition(echoTool().Def)
	want := mcp.Tool{
		Name:        "echo",
		Description: "Echo a message with the calling thread",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"message": map[string]any{"type": "string", "description": "Text to echo"},
				"loud":    map[string]any{"type": "boolean", "description": "Upper-case the reply"},
			},
			Required: []string{"message"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Definition() mismatch (-want +got):\n%s", diff)
	}
}

func TestToolsList(t *testing.T) {
	s, err := mcpserver.New(map[string]toolcall.Tool[string]{"echo": echoTool()})
	require.NoError(t, err)

	resp := s.MCP().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				InputSchema struct {
					Required []string `json:"required"`
				} `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Result.Tools, 1)
	require.Equal(t, "echo", decoded.Result.Tools[0].Name)
	require.Equal(t, []string{"message"}, decoded.Result.Tools[0].InputSchema.Required)
}
