/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package params extracts typed tool arguments from decoded JSON and builds
// the error payloads returned to models and MCP clients.
package params
