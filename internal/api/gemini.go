package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"searchshell/internal/config"
	"searchshell/internal/constants"
	"searchshell/internal/logging"
)

// GeminiClient calls the Gemini generateContent endpoint. The
// endpoint is not streamed; the complete answer is delivered through
// the delta callback as a single fragment so the rendering path is
// identical for both providers.
type GeminiClient struct {
	httpClient *http.Client
	cfg        *config.Config
	logger     *logging.Logger
}

// NewGeminiClient creates a client for the configured Gemini endpoint.
func NewGeminiClient(cfg *config.Config, logger *logging.Logger) *GeminiClient {
	if logger == nil {
		logger = logging.DefaultLogger
	}

	transport := http.DefaultTransport
	if cfg.Verbose {
		transport = logging.NewRoundTripper(transport, logger)
	}

	return &GeminiClient{
		httpClient: &http.Client{
			Timeout:   constants.DefaultGeminiTimeout,
			Transport: transport,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Stream implements Client. The whole reply arrives at once and is
// forwarded as one delta.
func (c *GeminiClient) Stream(ctx context.Context, messages []Message, onDelta func(string)) (string, error) {
	reqBody := c.buildRequest(messages)

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GetGenerateContentURL(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &TransportError{Err: err}
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &UpstreamError{StatusCode: resp.StatusCode}
		}
		return "", &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}

	if decoded.Error != nil {
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Code:       decoded.Error.Status,
			Message:    decoded.Error.Message,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{StatusCode: resp.StatusCode}
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: "response contained no candidates"}
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	full := text.String()
	if full != "" {
		onDelta(full)
	}
	return full, nil
}

// buildRequest maps chat messages onto Gemini content turns. System
// turns become a single systemInstruction; assistant turns use the
// "model" role.
func (c *GeminiClient) buildRequest(messages []Message) geminiRequest {
	var system []string
	var contents []geminiContent

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: m.Content}},
			})
		default:
			contents = append(contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: m.Content}},
			})
		}
	}

	req := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     c.cfg.Temperature,
			TopK:            c.cfg.TopK,
			TopP:            c.cfg.TopP,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: strings.Join(system, "\n\n")}},
		}
	}
	return req
}
