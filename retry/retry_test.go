/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vivek31singh/coding-agent/retry"
)

func testConfig() retry.Config {
	return retry.Config{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  10 * time.Millisecond,
		MaxJitter:   time.Millisecond,
	}
}

func always(err error) bool { return err != nil }

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	flaky := errors.New("502 bad gateway")

	got, err := retry.Do(context.Background(), testConfig(), "get_ref", always, func(context.Context) (string, error) {
		if attempts.Add(1) < 3 {
			return "", flaky
		}
		return "abc123", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "abc123" {
		t.Errorf("Do() = %q, want %q", got, "abc123")
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestDoExhausted(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	flaky := errors.New("connection reset")

	_, err := retry.Do(context.Background(), testConfig(), "get_ref", always, func(context.Context) (int, error) {
		attempts.Add(1)
		return 0, flaky
	})
	if !errors.Is(err, flaky) {
		t.Fatalf("Do() error = %v, want wrapped %v", err, flaky)
	}
	if !strings.HasPrefix(err.Error(), "get_ref failed after 3 retries") {
		t.Errorf("Do() error = %q, want operation context", err)
	}
	if n := attempts.Load(); n != 4 {
		t.Errorf("attempts = %d, want 4", n)
	}
}

func TestDoPermanentError(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	denied := errors.New("403 forbidden")

	_, err := retry.Do(context.Background(), testConfig(), "get_ref", func(error) bool { return false }, func(context.Context) (int, error) {
		attempts.Add(1)
		return 0, denied
	})
	if err != denied {
		t.Errorf("Do() error = %v, want %v unwrapped", err, denied)
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestDoZeroRetries(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MaxRetries = 0
	var attempts atomic.Int32

	_, err := retry.Do(context.Background(), cfg, "get_ref", always, func(context.Context) (int, error) {
		attempts.Add(1)
		return 0, errors.New("timeout")
	})
	if err == nil {
		t.Fatal("Do() succeeded, want error")
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestDoCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig()
	cfg.BaseBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	_, err := retry.Do(ctx, cfg, "get_ref", always, func(context.Context) (int, error) {
		cancel()
		return 0, errors.New("timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestDelay(t *testing.T) {
	t.Parallel()
	cfg := retry.Config{BaseBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}
	for _, tt := range []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{64, time.Second},
	} {
		if got := cfg.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	if err := retry.DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	for name, cfg := range map[string]retry.Config{
		"negative retries": {MaxRetries: -1},
		"negative base":    {BaseBackoff: -1},
		"negative max":     {MaxBackoff: -1},
		"negative jitter":  {MaxJitter: -1},
	} {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want error", name)
		}
	}
}
