/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package catalog describes the agents served by coding-agent: their
// models, tool bindings, MCP servers and memory settings. The built-in
// catalog is embedded YAML; Load validates a catalog against the set of
// tools the process actually provides.
package catalog
