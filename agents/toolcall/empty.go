/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

// EmptyTools carries no callbacks. It sits at the bottom of a callback
// stack such as devtools.DevelopmentTools.
type EmptyTools struct{}

type emptyToolsProvider[Resp any] struct{}

var _ ToolProvider[any, EmptyTools] = (*emptyToolsProvider[any])(nil)

// NewEmptyToolsProvider returns a provider with an empty tool set, for
// layered providers like devtools.NewProvider to extend.
func NewEmptyToolsProvider[Resp any]() ToolProvider[Resp, EmptyTools] {
	return emptyToolsProvider[Resp]{}
}

func (emptyToolsProvider[Resp]) Tools(_ EmptyTools) map[string]Tool[Resp] {
	return map[string]Tool[Resp]{}
}
