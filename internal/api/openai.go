package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"searchshell/internal/config"
	"searchshell/internal/constants"
	"searchshell/internal/logging"
)

// OpenAIClient streams chat completions from an OpenAI-compatible
// endpoint.
type OpenAIClient struct {
	httpClient *http.Client
	cfg        *config.Config
	logger     *logging.Logger
}

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(cfg *config.Config, logger *logging.Logger) *OpenAIClient {
	if logger == nil {
		logger = logging.DefaultLogger
	}

	transport := http.DefaultTransport
	if cfg.Verbose {
		transport = logging.NewRoundTripper(transport, logger)
	}

	return &OpenAIClient{
		httpClient: &http.Client{
			Timeout:   constants.DefaultAPITimeout,
			Transport: transport,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Stream sends a streaming chat completions request. onDelta is
// invoked once per received fragment, in order, on the read loop.
// Exactly one request is in flight per call; failures are not
// retried — the user re-issues the turn.
func (c *OpenAIClient) Stream(ctx context.Context, messages []Message, onDelta func(string)) (string, error) {
	body, err := json.Marshal(ChatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
		MaxTokens:   c.cfg.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GetChatCompletionsURL(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	processor := NewSSEProcessor(c.logger)
	processor.Connecting()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		processor.Fail()
		return "", &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		processor.Fail()
		return "", decodeUpstreamError(resp)
	}

	if err := processor.Process(ctx, resp.Body, onDelta); err != nil {
		// Failed: hand back whatever arrived before the break.
		return processor.Content(), &TransportError{Partial: processor.Content(), Err: err}
	}

	// Completed
	return processor.Content(), nil
}

// decodeUpstreamError reads a non-success response body and produces
// an *UpstreamError, falling back to the bare status when the body is
// not a structured error.
func decodeUpstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Error.Code,
			Message:    errResp.Error.Message,
		}
	}
	return &UpstreamError{StatusCode: resp.StatusCode}
}
