/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall defines tools once, independent of the model provider.
//
// A Tool pairs a Definition (name, description and typed parameters) with a
// handler over a ToolCall. Providers build maps of tools from callback
// structs and compose by wrapping a base provider:
//
//	base := toolcall.NewEmptyToolsProvider[string]()
//	tools := devtools.NewProvider(base).Tools(
//		devtools.NewDevelopmentTools(toolcall.EmptyTools{}, callbacks))
//
// The claudetool and googletool subpackages convert tools to the Anthropic
// and Gemini SDK shapes; the MCP server serves them directly.
package toolcall
