/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/workingmemory"
)

// Name is the server name reported to MCP clients.
const Name = "coding-agent"

// Server exposes a set of tools over MCP.
type Server struct {
	mcp     *server.MCPServer
	tools   map[string]toolcall.Tool[string]
	thread  string
	agent   string
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithThread sets the thread used for requests that carry no client session.
func WithThread(id string) Option {
	return func(s *Server) { s.thread = id }
}

// WithAgent names the agent recorded on every trace.
func WithAgent(name string) Option {
	return func(s *Server) { s.agent = name }
}

// WithVersion sets the server version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New registers every tool on a new MCP server. Tool definitions are
// validated first.
func New(tools map[string]toolcall.Tool[string], opts ...Option) (*Server, error) {
	s := &Server{
		tools:   tools,
		thread:  uuid.NewString(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(Name, s.version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Development tools for generating Next.js projects and publishing them to GitHub."),
	)

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(tools)) {
		t := tools[name]
		if err := t.Def.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		s.mcp.AddTool(Definition(t.Def), s.handler(t))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	return s, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over in and out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	logger := clog.FromContext(ctx)
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetContextFunc(func(c context.Context) context.Context {
		return clog.WithLogger(c, logger)
	})
	logger.Infof("Serving %d tools over stdio", len(s.tools))
	return stdio.Listen(ctx, in, out)
}

// Definition converts a tool definition to its MCP form.
func Definition(def toolcall.Definition) mcp.Tool {
	props, required := def.Schema()
	return mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

func (s *Server) handler(t toolcall.Tool[string]) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		thread := s.thread
		if session := server.ClientSessionFromContext(ctx); session != nil && session.SessionID() != "" {
			thread = session.SessionID()
		}
		ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
			ThreadID: thread,
			Agent:    s.agent,
			Surface:  "mcp",
		})
		ctx = workingmemory.WithThread(ctx, thread)
		log := clog.FromContext(ctx).With("tool", t.Def.Name).With("thread_id", thread)

		call := toolcall.ToolCall{
			ID:   uuid.NewString(),
			Name: t.Def.Name,
			Args: req.GetArguments(),
		}
		trace := agenttrace.StartTrace[string](ctx, t.Def.Name)

		var out string
		result := t.Call(ctx, call, trace, &out)
		body, err := json.Marshal(result)
		if err != nil {
			trace.Complete("", err)
			return nil, fmt.Errorf("encoding %s result: %w", t.Def.Name, err)
		}

		if msg, failed := result["error"]; failed {
			log.Warnf("Tool returned an error: %v", msg)
			trace.Complete(string(body), fmt.Errorf("%v", msg))
			return mcp.NewToolResultError(string(body)), nil
		}
		trace.Complete(string(body), nil)
		return mcp.NewToolResultText(string(body)), nil
	}
}
