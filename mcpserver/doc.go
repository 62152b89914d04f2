/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package mcpserver serves toolcall tools over the Model Context Protocol.
//
// Each MCP client session is its own working memory thread, so a client
// that generates a project can push it in a later call without repeating
// the chat ID. Tool results are returned as JSON text; results carrying an
// "error" key are marked as MCP tool errors.
package mcpserver
