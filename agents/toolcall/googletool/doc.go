/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package googletool adapts provider-independent tools to the Gemini SDK.

FromTool and Map turn toolcall.Tool values into genai.FunctionDeclaration
values with handlers that answer genai.FunctionCall with a
genai.FunctionResponse:

	tools := googletool.Map(devtools.NewProvider(base).Tools(cb))
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{googletool.Tool(tools)},
	}

	// for each function call in the response
	resp := tools[call.Name].Handler(ctx, call, trace, &result)

Param, OptionalParam and the Error helpers serve handlers written directly
against the SDK.
*/
package googletool
