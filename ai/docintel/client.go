// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/poiesic/doctwin/ai"
)

const (
	defaultModelID      = "prebuilt-layout"
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 5 * time.Minute

	apiKeyHeader = "Ocp-Apim-Subscription-Key"
)

// Client talks to a document intelligence service using the asynchronous
// analyze/poll protocol: submit bytes, receive an operation URL, poll until
// the analysis completes.
type Client struct {
	endpoint     string
	apiKey       string
	modelID      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger
}

var _ ai.LayoutAnalyzer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithModel sets the analysis model identifier.
func WithModel(modelID string) Option {
	return func(c *Client) {
		c.modelID = modelID
	}
}

// WithPollInterval sets the delay between operation status checks.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithPollTimeout bounds how long a single analysis may stay pending.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.pollTimeout = d
	}
}

// WithRateLimit throttles submissions to the given requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a layout analysis client for the service at endpoint.
//
// Returns ai.LayoutAnalyzer interface to enforce abstraction.
func NewClient(endpoint, apiKey string, opts ...Option) (ai.LayoutAnalyzer, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("docintel endpoint required")
	}

	c := &Client{
		endpoint:     strings.TrimRight(endpoint, "/"),
		apiKey:       apiKey,
		modelID:      defaultModelID,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(2.0), 4),
		pollInterval: defaultPollInterval,
		pollTimeout:  defaultPollTimeout,
		logger:       slog.Default().With("component", "docintel-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AnalyzeLayout submits document bytes for layout analysis and blocks until
// the result is available or the polling timeout expires.
func (c *Client) AnalyzeLayout(ctx context.Context, content []byte, filename string) (*ai.LayoutResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, err)
	}

	c.logger.Debug("submitting document for layout analysis",
		"filename", filename,
		"size", len(content),
		"model", c.modelID)

	opURL, err := c.submit(ctx, content)
	if err != nil {
		return nil, err
	}

	result, err := c.poll(ctx, opURL)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("layout analysis complete",
		"filename", filename,
		"pages", len(result.Pages),
		"paragraphs", len(result.Paragraphs),
		"tables", len(result.Tables))

	return result, nil
}

// submit posts the document bytes and returns the operation URL to poll.
func (c *Client) submit(ctx context.Context, content []byte) (string, error) {
	url := fmt.Sprintf("%s/documentModels/%s:analyze", c.endpoint, c.modelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", c.statusError(resp)
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("%w: missing Operation-Location header", ai.ErrBadResponse)
	}
	return opURL, nil
}

// operationStatus mirrors the service's operation document.
type operationStatus struct {
	Status        string          `json:"status"`
	AnalyzeResult *analyzeResult  `json:"analyzeResult,omitempty"`
	Error         *operationError `json:"error,omitempty"`
}

type operationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// poll checks the operation URL until the analysis finishes or the polling
// timeout expires.
func (c *Client) poll(ctx context.Context, opURL string) (*ai.LayoutResult, error) {
	deadline := time.Now().Add(c.pollTimeout)

	for {
		status, err := c.fetchOperation(ctx, opURL)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "succeeded":
			if status.AnalyzeResult == nil {
				return nil, fmt.Errorf("%w: succeeded without result", ai.ErrBadResponse)
			}
			return convertResult(status.AnalyzeResult), nil
		case "failed":
			return nil, c.operationFailure(status.Error)
		case "running", "notStarted":
			// keep polling
		default:
			return nil, fmt.Errorf("%w: unknown operation status %q", ai.ErrBadResponse, status.Status)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: analysis still pending after %s", ai.ErrServiceUnavailable, c.pollTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, ctx.Err())
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) fetchOperation(ctx context.Context, opURL string) (*operationStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var status operationStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrBadResponse, err)
	}
	return &status, nil
}

// statusError maps an unexpected HTTP status onto the ai sentinel errors.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusUnsupportedMediaType,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ai.ErrUnsupportedFormat, msg)
	case resp.StatusCode == http.StatusBadRequest && isContentError(msg):
		return fmt.Errorf("%w: %s", ai.ErrUnsupportedFormat, msg)
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %s", ai.ErrServiceUnavailable, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", ai.ErrBadResponse, resp.StatusCode, msg)
	}
}

// operationFailure maps a terminal failed operation onto the ai sentinel errors.
func (c *Client) operationFailure(opErr *operationError) error {
	if opErr == nil {
		return fmt.Errorf("%w: analysis failed", ai.ErrBadResponse)
	}
	if isContentError(opErr.Code) {
		return fmt.Errorf("%w: %s: %s", ai.ErrUnsupportedFormat, opErr.Code, opErr.Message)
	}
	return fmt.Errorf("%w: %s: %s", ai.ErrServiceUnavailable, opErr.Code, opErr.Message)
}

// isContentError reports whether an error code or body indicates the input
// itself is at fault, which retrying cannot fix.
func isContentError(s string) bool {
	s = strings.ToLower(s)
	for _, marker := range []string{"invalidcontent", "unsupportedcontent", "invalidrequest", "contentlengthexceeded", "corrupt"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
