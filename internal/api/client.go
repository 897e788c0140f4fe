// Package api is the stateless HTTP surface between the CLI and the
// coverage backend. Every operation returns a uniform Result plus an
// error classifying terminal failures; transient failures are retried
// internally with exponential backoff.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultIngestURL is the default upload host.
	DefaultIngestURL = "https://ingest.codecov.io"
	// DefaultAPIURL hosts the non-upload endpoints (base picking,
	// label analysis).
	DefaultAPIURL = "https://api.codecov.io"
	// DefaultLegacyURL hosts the v4 legacy upload endpoint.
	DefaultLegacyURL = "https://codecov.io"

	// TokenlessHeader carries the derived identifier used in place of
	// a token for public-repo PR uploads.
	TokenlessHeader = "X-Tokenless"

	// defaultTimeout bounds a single HTTP attempt, including reading
	// the response body. Blob PUTs share it.
	defaultTimeout = 60 * time.Second

	maxRetries     = 4
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// RequestModifier mutates an outgoing request. Grounded on the same
// pattern the CDS SDK client uses for per-request headers.
type RequestModifier func(*http.Request)

// SetHeader returns a modifier setting one header.
func SetHeader(key, value string) RequestModifier {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Client talks to the coverage backend. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL    string
	token      string
	tokenless  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides the default ingest host (enterprise setups).
	BaseURL string
	// Token is the upload credential; may be empty for tokenless runs.
	Token string
	// Tokenless is the derived identifier sent in the X-Tokenless
	// header when Token is empty.
	Tokenless string
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New creates a backend client.
func New(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultIngestURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		token:      opts.Token,
		tokenless:  opts.Tokenless,
		httpClient: hc,
		logger:     logger,
	}
}

// BaseURL returns the host the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Auth returns the modifier carrying this client's credentials:
// "Authorization: token <hex>" when a token is set, the X-Tokenless
// header otherwise.
func (c *Client) Auth() RequestModifier {
	if c.token != "" {
		return SetHeader("Authorization", "token "+c.token)
	}
	if c.tokenless != "" {
		return SetHeader(TokenlessHeader, c.tokenless)
	}
	return func(*http.Request) {}
}

// PostJSON posts in as a JSON body to path under the base URL and, if
// out is non-nil, decodes the response into it.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any, mods ...RequestModifier) (Result, error) {
	return c.requestJSON(ctx, http.MethodPost, c.baseURL+path, in, out, mods...)
}

// PutJSON puts in as a JSON body to path under the base URL.
func (c *Client) PutJSON(ctx context.Context, path string, in, out any, mods ...RequestModifier) (Result, error) {
	return c.requestJSON(ctx, http.MethodPut, c.baseURL+path, in, out, mods...)
}

// GetJSON gets path under the base URL and decodes the response into
// out when non-nil.
func (c *Client) GetJSON(ctx context.Context, path string, out any, mods ...RequestModifier) (Result, error) {
	return c.requestJSON(ctx, http.MethodGet, c.baseURL+path, nil, out, mods...)
}

// PutBlob PUTs raw bytes to an absolute (usually pre-signed) URL. No
// content type is set; the signed URL dictates acceptance.
func (c *Client) PutBlob(ctx context.Context, url string, data []byte) (Result, error) {
	return c.do(ctx, http.MethodPut, url, data, nil)
}

func (c *Client) requestJSON(ctx context.Context, method, url string, in, out any, mods ...RequestModifier) (Result, error) {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return Result{}, fmt.Errorf("encoding request body: %w", err)
		}
	}
	mods = append([]RequestModifier{SetHeader("Content-Type", "application/json")}, mods...)
	res, err := c.do(ctx, method, url, body, mods)
	if err != nil {
		return res, err
	}
	if out != nil && res.Text != "" {
		if err := json.Unmarshal([]byte(res.Text), out); err != nil {
			return res, fmt.Errorf("decoding response body: %w", err)
		}
	}
	return res, nil
}

// do performs one logical request with the retry ladder: up to four
// additional attempts after the first, backing off 1s, 2s, 4s, 8s.
// Network errors, 5xx, 408 and 429 are retried; other 4xx are
// terminal.
func (c *Client) do(ctx context.Context, method, url string, body []byte, mods []RequestModifier) (Result, error) {
	backoff := initialBackoff
	var lastResult Result
	var lastErr error

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return Result{}, fmt.Errorf("building request: %w", err)
		}
		for _, mod := range mods {
			if mod != nil {
				mod(req)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
			}
			lastErr = fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, url, err)
			lastResult = Result{}
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: reading response: %v", ErrNetwork, readErr)
				lastResult = Result{}
			} else {
				lastResult = resultFromResponse(resp.StatusCode, string(respBody))
				switch {
				case resp.StatusCode < 400:
					return lastResult, nil
				case retryableStatus(resp.StatusCode):
					lastErr = fmt.Errorf("%w: HTTP %d from %s", ErrBackendTransient, resp.StatusCode, url)
				default:
					return lastResult, fmt.Errorf("%w: HTTP %d from %s", ErrBackendRefused, resp.StatusCode, url)
				}
			}
		}

		if attempt >= maxRetries {
			return lastResult, lastErr
		}
		c.logger.Debug("retrying request",
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return lastResult, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func retryableStatus(status int) bool {
	return status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}
