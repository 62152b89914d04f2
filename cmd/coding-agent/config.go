/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/vivek31singh/coding-agent/agents/agenttrace"
	"github.com/vivek31singh/coding-agent/agents/devtools"
	"github.com/vivek31singh/coding-agent/agents/metrics"
	"github.com/vivek31singh/coding-agent/agents/toolcall"
	"github.com/vivek31singh/coding-agent/codegen"
	"github.com/vivek31singh/coding-agent/commitbuilder"
	"github.com/vivek31singh/coding-agent/githost"
	"github.com/vivek31singh/coding-agent/githost/githubhost"
	"github.com/vivek31singh/coding-agent/githost/memhost"
	"github.com/vivek31singh/coding-agent/workingmemory"
	"go.opentelemetry.io/otel/attribute"
)

type config struct {
	// Static token authentication.
	GitHubToken string `env:"GITHUB_TOKEN"`

	// GitHub App authentication, preferred over GITHUB_TOKEN when set.
	GitHubAppID          int64  `env:"GITHUB_APP_ID"`
	GitHubInstallationID int64  `env:"GITHUB_INSTALLATION_ID"`
	GitHubPrivateKey     string `env:"GITHUB_PRIVATE_KEY"`

	// GitHubOrganization owns created repositories instead of the authenticated user.
	GitHubOrganization string `env:"GITHUB_ORGANIZATION"`
	GitHubAPIURL       string `env:"GITHUB_API_URL"`

	V0APIKey string `env:"V0_API_KEY"`
	V0APIURL string `env:"V0_API_URL,default=https://api.v0.dev/v1"`

	CommitConcurrency  int  `env:"COMMIT_CONCURRENCY,default=8"`
	PublicRepositories bool `env:"PUBLIC_REPOSITORIES,default=false"`

	MetricsPort int `env:"METRICS_PORT,default=0"`
}

// host returns the git host commits are pushed to.
func (a *app) host(ctx context.Context) (githost.Host, error) {
	if a.dryRun {
		return memhost.New(), nil
	}

	var opts []githubhost.Option
	if a.cfg.GitHubOrganization != "" {
		opts = append(opts, githubhost.WithOrganization(a.cfg.GitHubOrganization))
	}
	switch {
	case a.cfg.GitHubAppID != 0:
		if a.cfg.GitHubInstallationID == 0 || a.cfg.GitHubPrivateKey == "" {
			return nil, errors.New("GITHUB_INSTALLATION_ID and GITHUB_PRIVATE_KEY are required with GITHUB_APP_ID")
		}
		client, err := githubhost.NewAppClient(a.cfg.GitHubAppID, a.cfg.GitHubInstallationID, []byte(a.cfg.GitHubPrivateKey), a.cfg.GitHubAPIURL)
		if err != nil {
			return nil, err
		}
		return githubhost.New(client, opts...), nil
	case a.cfg.GitHubToken != "":
		client, err := githubhost.NewTokenClient(ctx, a.cfg.GitHubToken, a.cfg.GitHubAPIURL)
		if err != nil {
			return nil, err
		}
		return githubhost.New(client, opts...), nil
	default:
		return nil, errors.New("GITHUB_TOKEN or GitHub App credentials are required")
	}
}

func (a *app) builder(ctx context.Context) (*commitbuilder.Builder, error) {
	host, err := a.host(ctx)
	if err != nil {
		return nil, err
	}
	return commitbuilder.New(host,
		commitbuilder.WithConcurrency(a.cfg.CommitConcurrency),
		commitbuilder.WithPrivate(!a.cfg.PublicRepositories),
	)
}

func (a *app) codegen() (*codegen.Client, error) {
	if a.cfg.V0APIKey == "" {
		return nil, errors.New("V0_API_KEY is required")
	}
	return codegen.New(a.cfg.V0APIKey, codegen.WithBaseURL(a.cfg.V0APIURL))
}

// tools assembles the development tools. Pushing is left out when no git
// host is configured.
func (a *app) tools(ctx context.Context, systemPrompt string) (map[string]toolcall.Tool[string], error) {
	cg, err := a.codegen()
	if err != nil {
		return nil, err
	}

	m := metrics.NewTools("github.com/vivek31singh/coding-agent")
	m.SetAttributeEnricher(func(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue {
		return agenttrace.GetExecutionContext(ctx).EnrichAttributes(base)
	})
	cb := devtools.Callbacks{
		CodeGen:      cg,
		Memory:       workingmemory.NewMemory(),
		SystemPrompt: systemPrompt,
		Metrics:      m,
	}
	if b, err := a.builder(ctx); err == nil {
		cb.Commits = b
	} else {
		clog.FromContext(ctx).Warnf("Pushing disabled: %v", err)
	}

	provider := devtools.NewProvider(toolcall.NewEmptyToolsProvider[string]())
	tools := provider.Tools(devtools.NewDevelopmentTools(toolcall.EmptyTools{}, cb))
	if len(tools) == 0 {
		return nil, fmt.Errorf("no tools available")
	}
	return tools, nil
}
