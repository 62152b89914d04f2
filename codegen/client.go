/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package codegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.v0.dev/v1"

	// DefaultMaxDownloadBytes caps version archive downloads.
	DefaultMaxDownloadBytes = 64 << 20

	maxErrorBody = 64 << 10
)

// Client talks to the hosted code generation service.
type Client struct {
	baseURL     string
	token       string
	maxDownload int64
	http        *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http.HTTPClient = hc }
}

// WithRetry sets how often throttled or failed requests are retried and
// the bounds of the wait between attempts.
func WithRetry(maxRetries int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = maxRetries
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// WithMaxDownloadBytes caps the size of downloaded version archives.
func WithMaxDownloadBytes(n int64) Option {
	return func(c *Client) { c.maxDownload = n }
}

// New returns a client authenticating with token.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("code generation API token is required")
	}

	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.CheckRetry = retryPolicy
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			clog.FromContext(req.Context()).Warn("Retrying code generation request",
				"method", req.Method, "path", req.URL.Path, "attempt", attempt)
		}
	}

	c := &Client{
		baseURL:     DefaultBaseURL,
		token:       token,
		maxDownload: DefaultMaxDownloadBytes,
		http:        rc,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxDownload <= 0 {
		return nil, fmt.Errorf("max download size must be positive, got %d", c.maxDownload)
	}
	if c.http.RetryMax < 0 {
		return nil, fmt.Errorf("max retries must be non-negative, got %d", c.http.RetryMax)
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	return c, nil
}

// CreateChat starts a chat from prompt. system, when set, is passed as the
// system instructions for generation.
func (c *Client) CreateChat(ctx context.Context, prompt, system string) (*Chat, error) {
	var chat Chat
	if err := c.doJSON(ctx, http.MethodPost, "/chats", createChatRequest{
		Message:     prompt,
		System:      system,
		ChatPrivacy: "private",
	}, &chat); err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	return &chat, nil
}

// SendMessage continues chatID with prompt and returns the updated chat.
func (c *Client) SendMessage(ctx context.Context, chatID, prompt string) (*Chat, error) {
	var chat Chat
	if err := c.doJSON(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/messages", sendMessageRequest{
		Message: prompt,
	}, &chat); err != nil {
		return nil, fmt.Errorf("sending message to chat %s: %w", chatID, err)
	}
	if chat.ID == "" {
		chat.ID = chatID
	}
	return &chat, nil
}

// GetProjectByChat returns the project a chat belongs to, or nil when the
// chat has none.
func (c *Client) GetProjectByChat(ctx context.Context, chatID string) (*Project, error) {
	var project Project
	err := c.doJSON(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID)+"/project", nil, &project)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("getting project for chat %s: %w", chatID, err)
	}
	return &project, nil
}

// DeleteProject deletes projectID.
func (c *Client) DeleteProject(ctx context.Context, projectID string) (*DeleteResult, error) {
	var res DeleteResult
	if err := c.doJSON(ctx, http.MethodDelete, "/projects/"+url.PathEscape(projectID), nil, &res); err != nil {
		return nil, fmt.Errorf("deleting project %s: %w", projectID, err)
	}
	return &res, nil
}

// DownloadVersion fetches the zip archive of a chat version.
func (c *Client) DownloadVersion(ctx context.Context, chatID, versionID string) ([]byte, error) {
	path := fmt.Sprintf("/chats/%s/versions/%s/download?format=zip", url.PathEscape(chatID), url.PathEscape(versionID))
	resp, err := c.do(ctx, http.MethodGet, path, nil, "application/zip")
	if err != nil {
		return nil, fmt.Errorf("downloading version %s: %w", versionID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.ContentLength > c.maxDownload {
		return nil, fmt.Errorf("downloading version %s: %w (%d > %d bytes)", versionID, ErrTooLarge, resp.ContentLength, c.maxDownload)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("reading version %s: %w", versionID, err)
	}
	if int64(len(data)) > c.maxDownload {
		return nil, fmt.Errorf("downloading version %s: %w (more than %d bytes)", versionID, ErrTooLarge, c.maxDownload)
	}
	clog.FromContext(ctx).Debug("Downloaded version archive", "chat_id", chatID, "version_id", versionID, "bytes", len(data))
	return data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// do sends the request and returns the response when the status is 2xx.
// Other statuses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any, accept string) (*http.Response, error) {
	var raw any
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		raw = b
	}

	if !idempotent(method) {
		ctx = context.WithValue(ctx, writeRequestKey{}, true)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, raw)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newAPIError(resp.StatusCode, b)
	}
	return resp, nil
}

type writeRequestKey struct{}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	}
	return false
}

// retryPolicy follows retryablehttp.DefaultRetryPolicy, except that writes
// are only retried when throttled. A POST that failed with a 5xx or a
// dropped connection may already have started a generation.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	retry, rerr := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	if !retry || rerr != nil {
		return retry, rerr
	}
	if write, _ := ctx.Value(writeRequestKey{}).(bool); write {
		return resp != nil && resp.StatusCode == http.StatusTooManyRequests, nil
	}
	return true, nil
}
