// Package openai implements provider.Client against OpenAI-compatible chat
// completions APIs (api.openai.com and the many servers that mirror its
// wire format).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codemodkit/codemod/provider"
)

// DefaultEndpoint is the hosted OpenAI API base URL.
const DefaultEndpoint = "https://api.openai.com"

// completionsPath is appended to the configured endpoint.
const completionsPath = "/v1/chat/completions"

// maxErrorBody bounds how much of an error response is carried into the
// returned error.
const maxErrorBody = 512

// Client is an HTTP client for one chat completions endpoint.
type Client struct {
	cfg        provider.Config
	httpClient *http.Client
	log        *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request-level diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the configured endpoint.
func New(cfg provider.Config, opts ...Option) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = provider.DefaultTimeout
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chatRequest is the outbound wire body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the inbound wire envelope.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete implements provider.Client. It performs a single POST; retry
// policy belongs to the caller.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	if c.cfg.APIKey == "" {
		return nil, provider.NewError("openai", "complete", provider.ErrMissingCredentials, false)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	body := chatRequest{
		Model:       model,
		MaxTokens:   firstNonZero(req.MaxTokens, c.cfg.MaxTokens),
		Temperature: req.Temperature,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, provider.NewError("openai", "complete", fmt.Errorf("marshal request: %w", err), false)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + completionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, provider.NewError("openai", "complete", err, false)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	c.log.Debug("sending completion request",
		zap.String("url", url),
		zap.String("model", model),
		zap.Int("request_bytes", len(payload)),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, provider.NewError("openai", "complete", provider.ErrTimeout, true)
		}
		return nil, provider.NewError("openai", "complete", fmt.Errorf("%w: %v", provider.ErrUnavailable, err), true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError("openai", "complete", fmt.Errorf("read response: %w", err), true)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(resp.StatusCode, raw)
	}

	var envelope chatResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, provider.NewError("openai", "complete",
			fmt.Errorf("%w: %v", provider.ErrMalformedEnvelope, err), true)
	}
	if envelope.Error != nil {
		return nil, provider.NewError("openai", "complete",
			fmt.Errorf("API error: %s", envelope.Error.Message), false)
	}
	if len(envelope.Choices) == 0 {
		return nil, provider.NewError("openai", "complete",
			fmt.Errorf("%w: no choices", provider.ErrMalformedEnvelope), true)
	}

	// Concatenate all choices' contents in array order.
	var content strings.Builder
	for _, choice := range envelope.Choices {
		content.WriteString(choice.Message.Content)
	}

	out := &provider.Response{
		Content:      content.String(),
		Model:        envelope.Model,
		FinishReason: envelope.Choices[len(envelope.Choices)-1].FinishReason,
		Duration:     time.Since(start),
		Usage: provider.TokenUsage{
			InputTokens:  envelope.Usage.PromptTokens,
			OutputTokens: envelope.Usage.CompletionTokens,
			TotalTokens:  envelope.Usage.TotalTokens,
		},
	}
	if out.Model == "" {
		out.Model = model
	}

	c.log.Debug("completion received",
		zap.Duration("duration", out.Duration),
		zap.Int("input_tokens", out.Usage.InputTokens),
		zap.Int("output_tokens", out.Usage.OutputTokens),
	)
	return out, nil
}

// statusError classifies a non-2xx response. 429 and 5xx are transient;
// other client errors are permanent.
func (c *Client) statusError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxErrorBody {
		detail = detail[:maxErrorBody]
	}

	switch {
	case status == http.StatusTooManyRequests:
		return provider.NewError("openai", "complete",
			fmt.Errorf("%w: %s", provider.ErrRateLimited, detail), true)
	case status >= 500:
		return provider.NewError("openai", "complete",
			fmt.Errorf("%w: status %d: %s", provider.ErrUnavailable, status, detail), true)
	case status == http.StatusRequestEntityTooLarge:
		return provider.NewError("openai", "complete", provider.ErrContextTooLong, false)
	default:
		return provider.NewError("openai", "complete",
			fmt.Errorf("%w: status %d: %s", provider.ErrInvalidRequest, status, detail), false)
	}
}

// Provider implements provider.Client.
func (c *Client) Provider() string {
	return "openai"
}

// Close implements provider.Client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
