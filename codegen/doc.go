/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package codegen is a client for the hosted code generation service.
//
// The service turns prompts into chats whose versions hold generated
// projects. The client creates and continues chats, looks up and deletes
// projects, and downloads version archives for committing. Reads and deletes
// are retried with backoff on 429 and 5xx; writes are retried only on 429.
// Other failures surface as *APIError.
package codegen
