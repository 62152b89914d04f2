/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand.
type app struct {
	cfg      config
	lookuper envconfig.Lookuper

	logLevel string
	dryRun   bool
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(envconfig.OsLookuper())
}

func newRootCmdWith(lookuper envconfig.Lookuper) *cobra.Command {
	a := &app{lookuper: lookuper}

	root := &cobra.Command{
		Use:           "coding-agent",
		Short:         "Generate Next.js projects and publish them to GitHub",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "Commit to an in-memory repository instead of GitHub")

	root.AddCommand(
		newPushCmd(a),
		newProjectCmd(a),
		newServeCmd(a),
		newAgentsCmd(a),
		newToolsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	ctx := clog.WithLogger(cmd.Context(), clog.New(handler))

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &a.cfg, Lookuper: a.lookuper}); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}
	if a.cfg.MetricsPort > 0 {
		serveMetrics(ctx, a.cfg.MetricsPort)
	}
	cmd.SetContext(ctx)
	return nil
}

// serveMetrics exposes Prometheus metrics until ctx is done.
func serveMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		clog.FromContext(ctx).Infof("Serving metrics on :%d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			clog.FromContext(ctx).Errorf("Metrics server failed: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
