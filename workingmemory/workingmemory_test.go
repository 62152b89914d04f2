/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workingmemory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vivek31singh/coding-agent/workingmemory"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := workingmemory.NewMemory()

	_, err := m.Get(ctx, "thread-1")
	require.ErrorIs(t, err, workingmemory.ErrNotFound)

	want := workingmemory.ProjectContext{ChatID: "chat-1", ProjectID: "prj-1", Status: workingmemory.StatusCreated}
	require.NoError(t, m.Put(ctx, "thread-1", want))

	got, err := m.Get(ctx, "thread-1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	// Threads are isolated.
	_, err = m.Get(ctx, "thread-2")
	require.ErrorIs(t, err, workingmemory.ErrNotFound)

	require.NoError(t, m.Delete(ctx, "thread-1"))
	require.NoError(t, m.Delete(ctx, "thread-1"))
	_, err = m.Get(ctx, "thread-1")
	require.ErrorIs(t, err, workingmemory.ErrNotFound)
	require.Equal(t, 0, m.Len())
}

func TestMemoryRequiresThread(t *testing.T) {
	ctx := context.Background()
	m := workingmemory.NewMemory()

	_, err := m.Get(ctx, "")
	require.ErrorIs(t, err, workingmemory.ErrNoThread)
	require.ErrorIs(t, m.Put(ctx, "", workingmemory.ProjectContext{}), workingmemory.ErrNoThread)
	require.ErrorIs(t, m.Delete(ctx, ""), workingmemory.ErrNoThread)
	_, err = m.Update(ctx, "", func(*workingmemory.ProjectContext) error { return nil })
	require.ErrorIs(t, err, workingmemory.ErrNoThread)
}

func TestMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	m := workingmemory.NewMemory()

	got, err := m.Update(ctx, "t", func(pc *workingmemory.ProjectContext) error {
		pc.Merge(workingmemory.ProjectContext{ChatID: "chat-1", LatestVersionID: "v1", Status: workingmemory.StatusCreated})
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "chat-1", got.ChatID)

	got, err = m.Update(ctx, "t", func(pc *workingmemory.ProjectContext) error {
		pc.Merge(workingmemory.ProjectContext{LatestVersionID: "v2", Status: workingmemory.StatusUpdated})
		return nil
	})
	require.NoError(t, err)
	want := workingmemory.ProjectContext{ChatID: "chat-1", LatestVersionID: "v2", Status: workingmemory.StatusUpdated}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Update() mismatch (-want +got):\n%s", diff)
	}

	boom := errors.New("boom")
	_, err = m.Update(ctx, "t", func(pc *workingmemory.ProjectContext) error {
		pc.ChatID = "discarded"
		return boom
	})
	require.ErrorIs(t, err, boom)
	saved, err := m.Get(ctx, "t")
	require.NoError(t, err)
	require.Equal(t, "chat-1", saved.ChatID)
}

func TestMemoryConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	m := workingmemory.NewMemory()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, fmt.Sprintf("thread-%d", i%5), func(pc *workingmemory.ProjectContext) error {
				pc.Title += "x"
				return nil
			})
			if err != nil {
				t.Errorf("Update() = %v", err)
			}
		}()
	}
	wg.Wait()

	for i := range 5 {
		pc, err := m.Get(ctx, fmt.Sprintf("thread-%d", i))
		require.NoError(t, err)
		require.Len(t, pc.Title, 10)
	}
}

func TestThreadContext(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, workingmemory.ThreadFromContext(ctx))
	require.Equal(t, "abc", workingmemory.ThreadFromContext(workingmemory.WithThread(ctx, "abc")))
}

func TestSchema(t *testing.T) {
	s, err := workingmemory.Schema()
	require.NoError(t, err)

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok, "properties = %T", s["properties"])
	project, ok := props["v0Project"].(map[string]any)
	require.True(t, ok, "v0Project = %T", props["v0Project"])
	fields, ok := project["properties"].(map[string]any)
	require.True(t, ok)

	for _, name := range []string{"chatId", "projectId", "title", "webUrl", "latestVersionId", "demoUrl", "status"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("schema missing %q", name)
		}
	}
}
