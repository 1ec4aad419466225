// Package meilisearch provides a typed Go client for managing API keys on a
// Meilisearch-compatible search service.
package meilisearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUserAgent = "meilisearch-sdk-go/" + Version

// Config wires the host, credentials, and telemetry for the API client.
type Config struct {
	// Host is the base URL of the search service, e.g. http://localhost:7700.
	Host string
	// APIKey is sent as a bearer token on every request. Leave empty for an
	// unsecured development instance.
	APIKey     string
	HTTPClient *http.Client
	Telemetry  TelemetryHooks
	UserAgent  string
	// Retry applies to idempotent GET requests only. The zero value disables
	// retries entirely.
	Retry RetryConfig
}

// Client provides high-level helpers for interacting with the service API.
type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
	telemetry  TelemetryHooks
	userAgent  string
	retry      RetryConfig

	// Grouped service clients.
	Keys *KeysClient
}

// NewClient validates the configuration and returns a ready-to-use Client.
func NewClient(cfg Config) (*Client, error) {
	host, err := normalizeHost(cfg.Host)
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	client := &Client{
		host:       host,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: httpClient,
		telemetry:  cfg.Telemetry,
		userAgent:  ua,
		retry:      cfg.Retry,
	}
	client.Keys = &KeysClient{client: client}
	return client, nil
}

func normalizeHost(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("meilisearch: host required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("meilisearch: invalid host: %w", err)
	}
	if u.Scheme == "" {
		return "", errors.New("meilisearch: host missing scheme (http/https)")
	}
	if u.Host == "" {
		return "", errors.New("meilisearch: host missing authority")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	injectTraceparent(ctx, req)
	return req, nil
}

func (c *Client) prepare(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// send issues the request and decodes error responses. Only GET requests are
// ever retried; writes map to non-idempotent server operations and stay
// single-shot regardless of the retry config.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	c.prepare(req)
	cfg := c.retry.normalized()
	maxAttempts := cfg.MaxAttempts
	if req.Method != http.MethodGet {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if delay := cfg.backoffDelay(attempt); delay > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
		}
		resp, err := c.doOnce(req.Clone(req.Context()))
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode < 400 {
			return resp, nil
		}
		if attempt < maxAttempts && retriableStatus(resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = APIError{Status: resp.StatusCode, Message: resp.Status}
			continue
		}
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return nil, lastErr
}

func (c *Client) doOnce(req *http.Request) (*http.Response, error) {
	if c.telemetry.OnHTTPRequest != nil {
		c.telemetry.OnHTTPRequest(req.Context(), req)
	}
	c.telemetry.log(req.Context(), LogLevelInfo, "http_request", map[string]any{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.telemetry.OnHTTPResponse != nil {
		c.telemetry.OnHTTPResponse(req.Context(), req, resp, err, time.Since(start))
	}
	c.telemetry.metric(req.Context(), "sdk_http_request_latency_ms", float64(time.Since(start).Milliseconds()), map[string]string{
		"path": req.URL.Path,
	})
	return resp, err
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.host + path
}
