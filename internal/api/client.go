// Package api is the HTTP boundary to the RentHub backend: bearer-token
// injection, JSON encoding, outbound rate limiting, and the mapping from
// non-2xx responses to the apierr taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/renthub/renthub-go/internal/apierr"
)

// TokenFunc supplies the current access token; it returns "" when no session
// is established. Unauthenticated endpoints (login, register) work either way
// because the backend ignores the header where it is not required.
type TokenFunc func() string

// Client issues JSON requests against the backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
	limiter *rate.Limiter
	log     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client; tests point it at an
// httptest server.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit throttles outbound calls. Rapid repeated taps on the same
// control must not stampede the backend.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client for the given base URL. token may not be nil.
func New(baseURL string, token TokenFunc, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apierr.Network(err)
		}
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return apierr.Network(err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apierr.Network(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	corrID := uuid.NewString()
	req.Header.Set("X-Correlation-ID", corrID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api call failed", "method", method, "path", path, "correlation_id", corrID, "error", err)
		return apierr.Network(err)
	}
	defer resp.Body.Close()

	c.log.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "correlation_id", corrID)

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierr.Network(err)
	}
	return nil
}

// decodeError reads a non-2xx body and extracts the server-provided message
// field, if any, per the backend contract.
func decodeError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		// Undecodable bodies fall back to the status text.
		_ = json.Unmarshal(body, &payload)
	}
	return apierr.FromStatus(resp.StatusCode, payload.Message)
}
