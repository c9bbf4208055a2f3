// Package llm defines the inference backend abstraction. Each backend
// family (openai, vllm, ollama) owns its request construction and response
// envelope parsing; the family is selected once at construction, never by
// inspecting names per call.
package llm

import (
	"context"
	"time"
)

// Backend is one inference endpoint bound to a provider-family strategy.
type Backend interface {
	// Name returns the backend family name
	Name() string

	// Addr returns the configured base address
	Addr() string

	// Generate runs one completion request and unwraps the provider
	// envelope into plain text.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is a single completion request
type GenerateRequest struct {
	// Prompt is the user message
	Prompt string

	// JSONOutput constrains the reply to a JSON object where the backend
	// supports it
	JSONOutput bool

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse is the unwrapped completion
type GenerateResponse struct {
	// Text is the plain-text reply
	Text string

	// PromptTokens is the prompt token count reported by the backend
	// (0 when not reported)
	PromptTokens int
}

// Config holds backend construction parameters
type Config struct {
	// Provider family: openai, vllm, ollama
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted endpoints
	APIKey string

	// Timeout for the underlying HTTP client; callers additionally apply a
	// per-request context timeout
	Timeout time.Duration

	// MaxTokens default for requests that leave it unset
	MaxTokens int
}
