// Package api provides clients for remote language-model services.
// It supports OpenAI-compatible streaming chat completions and the
// Gemini generateContent endpoint behind a single interface.
package api

import (
	"context"
	"fmt"

	"searchshell/internal/config"
	"searchshell/internal/logging"
)

// Client is the narrow interface the conversation layer depends on.
type Client interface {
	// Stream sends the ordered message list and invokes onDelta once
	// per received text fragment, in arrival order, synchronously with
	// respect to the stream. It returns the full assembled response.
	// On failure the returned error is a *TransportError (carrying any
	// partial text) or a *UpstreamError.
	Stream(ctx context.Context, messages []Message, onDelta func(delta string)) (string, error)
}

// Ensure both clients implement Client.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*GeminiClient)(nil)
)

// NewClient creates a model client for the configured provider.
func NewClient(cfg *config.Config, logger *logging.Logger) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg, logger), nil
	case "gemini":
		return NewGeminiClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
