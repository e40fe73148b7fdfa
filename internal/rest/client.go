// Package rest is a small JSON-focused HTTP client used for the upstream
// source APIs and for bot↔scrapper calls. All requests send and accept
// application/json.
package rest

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

// Config configures a REST client.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the per-request timeout (e.g. "10s").
	Timeout string `mapstructure:"timeout"`
	// Headers are sent with every request.
	Headers map[string]string `mapstructure:"headers"`
}

// Client is a JSON REST client.
type Client struct {
	baseURL string
	headers map[string]string
	hc      *http.Client
}

// New creates a new REST client from the given config.
func New(cfg Config) *Client {
	timeout := 10 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			timeout = d
		}
	}
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: headers,
		hc:      &http.Client{Timeout: timeout},
	}
}

// RequestOption configures a single request.
type RequestOption func(*requestParams)

type requestParams struct {
	query   map[string]string
	headers map[string]string
}

// WithQuery adds query parameters to the request.
func WithQuery(params map[string]string) RequestOption {
	return func(r *requestParams) { r.query = params }
}

// WithHeaders adds headers to the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *requestParams) { r.headers = headers }
}

// Response wraps a typed REST response. Data is decoded only for 2xx
// statuses; Body always carries the raw payload so callers can decode
// error envelopes themselves.
type Response[T any] struct {
	StatusCode int
	Data       T
	Body       []byte
}

// OK reports whether the response status is 2xx.
func (r *Response[T]) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request and decodes the JSON response into type T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, nil, opts...)
}

// Post performs a POST request with a JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPost, path, body, opts...)
}

// Put performs a PUT request with a JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPut, path, body, opts...)
}

// Delete performs a DELETE request, optionally with a JSON body.
func Delete[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodDelete, path, body, opts...)
}

func do[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (*Response[T], error) {
	params := &requestParams{}
	for _, opt := range opts {
		opt(params)
	}

	target := c.baseURL + path
	if len(params.query) > 0 {
		values := url.Values{}
		for k, v := range params.query {
			values.Set(k, v)
		}
		target += "?" + values.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("rest: marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("rest: build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range params.headers {
		req.Header.Set(k, v)
	}

	httpResp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest: %s %s: %w", method, target, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("rest: read response: %w", err)
	}

	resp := &Response[T]{StatusCode: httpResp.StatusCode, Body: raw}
	if resp.OK() && len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp.Data); err != nil {
			return nil, fmt.Errorf("rest: decode response: %w", err)
		}
	}
	return resp, nil
}
