/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package claudetool adapts provider-independent tools to the Anthropic SDK.

FromTool and Map turn toolcall.Tool values into anthropic.ToolParam
definitions with handlers over anthropic.ToolUseBlock:

	tools := claudetool.Map(devtools.NewProvider(base).Tools(cb))
	req := anthropic.MessageNewParams{
		Tools: claudetool.ToolUnionParams(tools),
		// ...
	}

	// for each tool_use block in the response
	resp := tools[block.Name].Handler(ctx, block, trace, &result)

Params gives typed access to the raw input of a tool use block for handlers
written directly against the SDK.
*/
package claudetool
