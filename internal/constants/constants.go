// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Timeout constants used across the application
const (
	// DefaultAPITimeout is the timeout for model API requests (streaming can take a while)
	DefaultAPITimeout = 120 * time.Second
	// DefaultSearchTimeout is the timeout for web search requests
	DefaultSearchTimeout = 30 * time.Second
	// DefaultGeminiTimeout is the timeout for the non-streaming Gemini endpoint
	DefaultGeminiTimeout = 30 * time.Second
)

// Application defaults
const (
	DefaultProvider      = "openai"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultGeminiModel   = "gemini-1.5-flash-8b"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	DefaultSearchResults = 5
	MaxSearchResults     = 20
)

// Generation parameter defaults sent with every model request
const (
	DefaultTemperature = 0.7
	DefaultTopP        = 0.95
	DefaultTopK        = 40
	DefaultMaxTokens   = 2048
)

// DefaultSystemMessage is the persona prompt prepended to every conversation.
const DefaultSystemMessage = "You are a helpful assistant. Converse with the user naturally. " +
	"Incorporate emojis into your responses wherever they fit naturally. " +
	"If the user asks a search query, answer from the provided web context when available, " +
	"otherwise use your own knowledge, and state clearly when the context is not relevant. " +
	"Ensure answers are detailed, use points where helpful, and are properly formatted for reading."
