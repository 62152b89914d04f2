/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubhost

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// NewTokenClient returns a go-github client authenticated with a static
// token. A non-empty baseURL targets GitHub Enterprise.
func NewTokenClient(ctx context.Context, token, baseURL string) (*github.Client, error) {
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	return withBaseURL(github.NewClient(hc), baseURL)
}

// NewAppClient returns a go-github client authenticated as a GitHub App
// installation. Installation tokens are refreshed by the transport.
func NewAppClient(appID, installationID int64, privateKey []byte, baseURL string) (*github.Client, error) {
	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if baseURL != "" {
		tr.BaseURL = baseURL
	}
	return withBaseURL(github.NewClient(&http.Client{Transport: tr}), baseURL)
}

func withBaseURL(c *github.Client, baseURL string) (*github.Client, error) {
	if baseURL == "" {
		return c, nil
	}
	ec, err := c.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("setting enterprise URLs: %w", err)
	}
	return ec, nil
}
