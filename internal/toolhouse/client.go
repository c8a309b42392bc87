// ABOUTME: Streaming HTTP client for starting and continuing agent conversations
// ABOUTME: POSTs the first message, PUTs follow-ups to endpoint/runID

package toolhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RunIDHeader carries the conversation id on a start response.
const RunIDHeader = "X-Toolhouse-Run-ID"

const defaultUserAgent = "toolhouse-hub"

// StartResult is the outcome of StartConversation.
type StartResult struct {
	// RunID is empty when the endpoint did not send RunIDHeader.
	RunID    string
	FullText string
}

// ContinueResult is the outcome of ContinueConversation.
type ContinueResult struct {
	FullText string
}

// messageRequest is the JSON body sent on both calls.
type messageRequest struct {
	Message string `json:"message"`
}

// Client talks to Toolhouse agent endpoints.
type Client struct {
	httpClient *http.Client
	apiKey     string
	userAgent  string
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAPIKey sends the key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each call, including reading the whole stream.
// Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger. Nil keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		userAgent:  defaultUserAgent,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "toolhouse")
	return c
}

// StartConversation opens a new conversation at endpoint with message.
// onChunk, if non-nil, is called with the cumulative response text.
func (c *Client) StartConversation(ctx context.Context, endpoint, message string, onChunk ChunkFunc) (*StartResult, error) {
	resp, cancel, err := c.do(ctx, http.MethodPost, endpoint, message)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	runID := resp.Header.Get(RunIDHeader)
	if runID == "" {
		c.logger.Warn("start response carried no run id", "endpoint", endpoint)
	}

	text, err := readStream(resp.Body, onChunk)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("reading stream: %w", err)}
	}

	c.logger.Debug("conversation started", "endpoint", endpoint, "run_id", runID, "bytes", len(text))
	return &StartResult{RunID: runID, FullText: text}, nil
}

// ContinueConversation sends message to the existing conversation runID.
func (c *Client) ContinueConversation(ctx context.Context, endpoint, runID, message string, onChunk ChunkFunc) (*ContinueResult, error) {
	target := strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(runID)

	resp, cancel, err := c.do(ctx, http.MethodPut, target, message)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	text, err := readStream(resp.Body, onChunk)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("reading stream: %w", err)}
	}

	c.logger.Debug("conversation continued", "endpoint", endpoint, "run_id", runID, "bytes", len(text))
	return &ContinueResult{FullText: text}, nil
}

// do sends the request and checks the status. On success the caller owns
// resp.Body and must call cancel once the body is consumed.
func (c *Client) do(ctx context.Context, method, target, message string) (*http.Response, context.CancelFunc, error) {
	body, err := json.Marshal(messageRequest{Message: message})
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling request: %w", err)
	}

	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, nil, &RequestError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, &RequestError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		reqErr := statusError(resp)
		c.logger.Warn("endpoint returned error status",
			"method", method,
			"status", resp.StatusCode,
		)
		return nil, nil, reqErr
	}

	return resp, cancel, nil
}
