// Package upstream is the authenticated request layer in front of the
// backend REST API. Every outgoing call passes through here; when the caller
// supplies a bearer credential it is attached to the Authorization header,
// otherwise the request goes out unauthenticated (some endpoints are public).
package upstream

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

	"github.com/rs/zerolog"

	"github.com/garmentsource/storefront-gateway/internal/api/metrics"
	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

const defaultTimeout = 30 * time.Second

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues JSON and binary requests against the backend base URL.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

// StatusError is a non-2xx upstream reply. The body is preserved verbatim so
// callers can pass the backend's error payload through unchanged.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Code)
}

// StatusCode returns the upstream HTTP status carried by err, or 0 when err
// is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// New validates the base URL and returns a ready Client. A default timeout
// is applied when none is provided.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("upstream base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base url %q: missing scheme or host", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

func (c *Client) Get(ctx context.Context, path, credential string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, credential, nil)
}

func (c *Client) Post(ctx context.Context, path, credential string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, credential, body)
}

func (c *Client) Put(ctx context.Context, path, credential string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, credential, body)
}

func (c *Client) Delete(ctx context.Context, path, credential string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, credential, nil)
}

func (c *Client) do(ctx context.Context, method, path, credential string, body any) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstreamUnavailable, err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && credential != "" {
			// Deliberately no auto-logout here; the session stays
			// live and the rejection is surfaced to the caller.
			c.log.Warn().Str("path", path).Msg("upstream rejected session credential")
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: data}
	}

	return data, nil
}

// Download streams a binary response (trade document PDFs). The caller must
// close the returned reader.
func (c *Client) Download(ctx context.Context, path, credential string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(http.MethodGet, "transport_error").Inc()
		return nil, "", fmt.Errorf("%w: GET %s: %v", domain.ErrUpstreamUnavailable, path, err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(http.MethodGet, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, "", &StatusError{Code: resp.StatusCode, Body: data}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return resp.Body, contentType, nil
}

// ResolveUpload turns a backend-relative upload reference into an absolute
// URL. Already-absolute references pass through unchanged.
func (c *Client) ResolveUpload(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.Contains(ref, "://") {
		return ref
	}
	return c.resolve("/uploads/" + strings.TrimPrefix(ref, "/"))
}

func (c *Client) resolve(path string) string {
	p, rawQuery := path, ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		p, rawQuery = path[:i], path[i+1:]
	}
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(p, "/")
	u.RawQuery = rawQuery
	return u.String()
}

func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
