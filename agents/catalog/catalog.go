/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed agents.yaml
var defaultCatalog []byte

// Working memory scopes.
const (
	ScopeNone   = ""
	ScopeThread = "thread"
)

// Catalog is the set of agents and the MCP servers they draw tools from.
type Catalog struct {
	MCPServers map[string]MCPServer `yaml:"mcpServers"`
	Agents     []Agent              `yaml:"agents"`
}

// MCPServer is an external MCP server started over stdio.
type MCPServer struct {
	Description string   `yaml:"description"`
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args"`
}

// Agent configures one agent.
type Agent struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Model        string   `yaml:"model"`
	Instructions string   `yaml:"instructions"`
	Tools        []string `yaml:"tools"`
	MCPServers   []string `yaml:"mcpServers"`
	Memory       Memory   `yaml:"memory"`
}

// Memory configures conversation recall.
type Memory struct {
	LastMessages  int    `yaml:"lastMessages"`
	GenerateTitle bool   `yaml:"generateTitle"`
	WorkingMemory string `yaml:"workingMemory"`
}

// Default returns the built-in catalog validated against tools.
func Default(tools []string) (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog), tools)
}

// Load decodes a catalog and checks that every agent is complete and only
// references the given tools and the catalog's own MCP servers.
func Load(r io.Reader, tools []string) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := c.validate(tools); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate(tools []string) error {
	if len(c.Agents) == 0 {
		return errors.New("catalog has no agents")
	}
	for name, s := range c.MCPServers {
		if s.Command == "" {
			return fmt.Errorf("mcp server %s: command is required", name)
		}
	}

	var errs []error
	seen := make(map[string]struct{}, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			errs = append(errs, errors.New("agent name is required"))
			continue
		}
		if _, dup := seen[a.Name]; dup {
			errs = append(errs, fmt.Errorf("agent %s: defined more than once", a.Name))
		}
		seen[a.Name] = struct{}{}

		if a.Model == "" {
			errs = append(errs, fmt.Errorf("agent %s: model is required", a.Name))
		}
		for _, t := range a.Tools {
			if !slices.Contains(tools, t) {
				errs = append(errs, fmt.Errorf("agent %s: unknown tool %q", a.Name, t))
			}
		}
		for _, s := range a.MCPServers {
			if _, ok := c.MCPServers[s]; !ok {
				errs = append(errs, fmt.Errorf("agent %s: unknown mcp server %q", a.Name, s))
			}
		}
		if a.Memory.LastMessages < 0 {
			errs = append(errs, fmt.Errorf("agent %s: lastMessages must be non-negative", a.Name))
		}
		switch a.Memory.WorkingMemory {
		case ScopeNone, ScopeThread:
		default:
			errs = append(errs, fmt.Errorf("agent %s: unsupported working memory scope %q", a.Name, a.Memory.WorkingMemory))
		}
	}
	return errors.Join(errs...)
}

// Agent returns the agent called name.
func (c *Catalog) Agent(name string) (Agent, bool) {
	i := slices.IndexFunc(c.Agents, func(a Agent) bool { return a.Name == name })
	if i < 0 {
		return Agent{}, false
	}
	return c.Agents[i], true
}
