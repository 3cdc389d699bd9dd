package xero

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.xero.com/api.xro/2.0"

// Client provides authenticated access to the Xero accounting API. Every
// request goes through a single wrapper that applies the retry contract:
// on a 401 the token is refreshed once and the request retried once; a
// second 401 is returned to the caller as-is.
type Client struct {
	baseURL    string
	tokens     *TokenStore
	httpClient *http.Client
}

// ClientConfig holds configuration for the API client.
type ClientConfig struct {
	BaseURL string
	Tokens  *TokenStore
	Timeout time.Duration
}

// NewClient creates a new Xero API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:     cfg.Tokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// do executes one API call under the refresh-and-retry contract and returns
// the status code and the full response body.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) (int, []byte, error) {
	for attempt := 0; attempt < 2; attempt++ {
		headers, err := c.tokens.Headers()
		if err != nil {
			return 0, nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return 0, nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return resp.StatusCode, nil, readErr
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			// Access token expired: refresh once and retry the call.
			if _, err := c.tokens.Refresh(ctx); err != nil {
				return resp.StatusCode, respBody, err
			}
			continue
		}

		return resp.StatusCode, respBody, nil
	}
	// Unreachable: the loop always returns.
	return 0, nil, nil
}

func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	return c.do(ctx, http.MethodGet, path, "", nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte) (int, []byte, error) {
	return c.do(ctx, http.MethodPost, path, "application/json", body)
}

func (c *Client) putJSON(ctx context.Context, path string, body []byte) (int, []byte, error) {
	return c.do(ctx, http.MethodPut, path, "application/json", body)
}

func (c *Client) putRaw(ctx context.Context, path, contentType string, body []byte) (int, []byte, error) {
	return c.do(ctx, http.MethodPut, path, contentType, body)
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
