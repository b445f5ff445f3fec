// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

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

	"eduautismo/cli/internal/manifest"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// HTTP implements API client over REST endpoints.
type HTTP struct {
	// m holds the base URL and the endpoint paths
	m *manifest.Manifest
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	// userAgent is sent with every request
	userAgent string
}

// newHTTP creates a new HTTP client for the given manifest.
func newHTTP(m *manifest.Manifest, timeout time.Duration, userAgent string) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = "eduautismo-cli"
	}
	return &HTTP{
		m:         m,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// setStandardHeaders adds headers common to every request.
func (h *HTTP) setStandardHeaders(req *http.Request, bearer string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

// postJSON sends body as JSON and decodes a 2xx answer into out (when non-nil).
func (h *HTTP) postJSON(ctx context.Context, path string, body any, bearer string, out any) (http.Header, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.m.URL(path), rd)
	if err != nil {
		return nil, err
	}
	h.setStandardHeaders(req, bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.do(req, out)
}

// postForm sends values form-urlencoded and decodes a 2xx answer into out.
func (h *HTTP) postForm(ctx context.Context, path string, values url.Values, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.m.URL(path), strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	h.setStandardHeaders(req, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req, out)
}

// get performs a GET and decodes a 2xx answer into out.
func (h *HTTP) get(ctx context.Context, path, bearer string, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.m.URL(path), nil)
	if err != nil {
		return nil, err
	}
	h.setStandardHeaders(req, bearer)
	return h.do(req, out)
}

func (h *HTTP) do(req *http.Request, out any) (http.Header, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return resp.Header, newStatusError(resp.StatusCode, b)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return resp.Header, fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return resp.Header, nil
}

// GetVersion calls GET /health and returns the version string when available.
// No authentication required. This can be used to check connectivity to the backend service.
func (h *HTTP) GetVersion(ctx context.Context) (string, error) {
	var out struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if _, err := h.get(ctx, h.m.HTTP.Health, "", &out); err != nil {
		return "", err
	}
	if out.Version == "" {
		return "unknown", nil
	}
	return out.Version, nil
}
