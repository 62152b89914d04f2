/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudetool

import (
	"encoding/json"
	"maps"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/vivek31singh/coding-agent/agents/toolcall/params"
)

// Params provides parameter extraction from Claude tool use blocks.
type Params struct {
	inputMap map[string]any
}

// NewParams decodes the tool input once. An empty input is treated as an
// empty object.
func NewParams(toolUse anthropic.ToolUseBlock) (*Params, map[string]any) {
	inputMap := map[string]any{}
	if len(toolUse.Input) > 0 {
		if err := json.Unmarshal(toolUse.Input, &inputMap); err != nil {
			return nil, params.Error("Failed to parse tool input: %v", err)
		}
	}
	if inputMap == nil {
		inputMap = map[string]any{}
	}
	return &Params{inputMap: inputMap}, nil
}

// Get returns the value for a given parameter name.
func (cp *Params) Get(name string) (any, bool) {
	val, exists := cp.inputMap[name]
	return val, exists
}

// Param extracts a required parameter with type safety.
func Param[T any](cp *Params, name string) (T, map[string]any) {
	v, err := params.Extract[T](cp.inputMap, name)
	if err != nil {
		return v, params.Error("%s", err)
	}
	return v, nil
}

// OptionalParam extracts an optional parameter with a default value.
func OptionalParam[T any](cp *Params, name string, defaultValue T) (T, map[string]any) {
	v, err := params.ExtractOptional[T](cp.inputMap, name, defaultValue)
	if err != nil {
		return v, params.Error("%s", err)
	}
	return v, nil
}

// RawInputs returns a shallow copy of the decoded input.
func (cp *Params) RawInputs() map[string]any {
	return maps.Clone(cp.inputMap)
}
