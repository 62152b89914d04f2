/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

// ToolProvider defines tools for an agent.
// Implementations return provider-independent tool definitions.
// Compose providers by wrapping: Empty -> Development.
// Conversion to SDK-specific types happens in claudetool, googletool and
// the MCP server.
type ToolProvider[Resp, CB any] interface {
	// Tools returns unified tool definitions that work with any provider.
	Tools(cb CB) map[string]Tool[Resp]
}
