/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaitool adapts toolcall tools to OpenAI chat completion
// function tools.
//
//	tools := openaitool.Map(provider.Tools(cb))
//	req := openai.ChatCompletionNewParams{
//		Model: "gpt-4o-mini",
//		Tools: openaitool.Tools(tools),
//	}
//
// Tool calls in the completion are dispatched by function name:
//
//	for _, call := range completion.Choices[0].Message.ToolCalls {
//		resp := tools[call.Function.Name].Handler(ctx, call, trace, &result)
//		msg, err := openaitool.Result(call, resp)
//		...
//	}
package openaitool
