// Package jira implements the remote resource client for Jira Cloud. One HTTP
// transport serves two request builders: the core REST surface and the agile
// (board, sprint, epic) surface.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBody = 16 << 20

// Config holds connection settings.
type Config struct {
	Host            string
	Principal       string
	Token           string
	CoreAPIVersion  string
	AgileAPIVersion string
	Timeout         time.Duration
}

// Logger receives one debug line per remote call.
type Logger interface {
	Debug(msg string, keyvals ...any)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client issues authenticated requests against one Jira site.
type Client struct {
	httpClient *http.Client
	host       string
	principal  string
	token      string
	logger     Logger

	core  endpoint
	agile endpoint
}

// endpoint builds requests under one path prefix of the shared client.
type endpoint struct {
	client *Client
	prefix string
}

// New constructs a client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	host := strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidArgument)
	}
	if _, err := url.Parse(host); err != nil {
		return nil, fmt.Errorf("%w: parse host: %v", ErrInvalidArgument, err)
	}
	if strings.TrimSpace(cfg.Principal) == "" || strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: principal and token are required", ErrInvalidArgument)
	}
	coreVersion := strings.Trim(strings.TrimSpace(cfg.CoreAPIVersion), "/")
	if coreVersion == "" {
		coreVersion = "3"
	}
	agileVersion := strings.Trim(strings.TrimSpace(cfg.AgileAPIVersion), "/")
	if agileVersion == "" {
		agileVersion = "1.0"
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		host:       host,
		principal:  strings.TrimSpace(cfg.Principal),
		token:      strings.TrimSpace(cfg.Token),
		logger:     noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.core = endpoint{client: c, prefix: "/rest/api/" + coreVersion}
	c.agile = endpoint{client: c, prefix: "/rest/agile/" + agileVersion}
	return c, nil
}

// Host returns the normalized site root.
func (c *Client) Host() string {
	return c.host
}

// BrowseURL returns the web link for an issue key.
func (c *Client) BrowseURL(key string) string {
	return c.host + "/browse/" + url.PathEscape(key)
}

// do sends one request and decodes a JSON response into out when out is non-nil.
func (e endpoint) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	fullPath := e.prefix + path
	target := e.client.host + fullPath
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, fullPath, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, fullPath, err)
	}
	req.SetBasicAuth(e.client.principal, e.client.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := e.client.httpClient.Do(req)
	if err != nil {
		e.client.logger.Debug("jira request failed", "method", method, "path", fullPath, "err", err)
		return &RequestError{Method: method, Path: fullPath, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	e.client.logger.Debug("jira request", "method", method, "path", fullPath, "status", resp.StatusCode, "elapsed", time.Since(started))
	if err != nil {
		return &RequestError{Method: method, Path: fullPath, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Method: method, Path: fullPath, Status: resp.StatusCode, Body: string(payload)}
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return &RequestError{Method: method, Path: fullPath, Status: resp.StatusCode, Err: errEmptyBody}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &RequestError{Method: method, Path: fullPath, Status: resp.StatusCode, Body: string(payload), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
