/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workingmemory

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]ProjectContext
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{projects: make(map[string]ProjectContext)}
}

func (m *Memory) Get(_ context.Context, threadID string) (ProjectContext, error) {
	if threadID == "" {
		return ProjectContext{}, ErrNoThread
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	pc, ok := m.projects[threadID]
	if !ok {
		return ProjectContext{}, ErrNotFound
	}
	return pc, nil
}

func (m *Memory) Put(_ context.Context, threadID string, pc ProjectContext) error {
	if threadID == "" {
		return ErrNoThread
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[threadID] = pc
	return nil
}

func (m *Memory) Update(_ context.Context, threadID string, fn func(*ProjectContext) error) (ProjectContext, error) {
	if threadID == "" {
		return ProjectContext{}, ErrNoThread
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pc := m.projects[threadID]
	if err := fn(&pc); err != nil {
		return ProjectContext{}, err
	}
	m.projects[threadID] = pc
	return pc, nil
}

func (m *Memory) Delete(_ context.Context, threadID string) error {
	if threadID == "" {
		return ErrNoThread
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, threadID)
	return nil
}

// Len reports the number of threads with a saved project.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.projects)
}
