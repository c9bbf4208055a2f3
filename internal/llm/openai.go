package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend talks to any OpenAI-compatible chat completion endpoint
// through the official client.
type OpenAIBackend struct {
	client *openai.Client
	addr   string
	config Config
}

// NewOpenAIBackend creates an OpenAI-family backend for one address.
func NewOpenAIBackend(cfg Config, addr string) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURLWithV1(addr)
	client := openai.NewClientWithConfig(clientConfig)

	return &OpenAIBackend{
		client: client,
		addr:   addr,
		config: cfg,
	}, nil
}

// Name returns the backend family name
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Addr returns the configured base address
func (b *OpenAIBackend) Addr() string {
	return b.addr
}

// Generate runs one chat completion request
func (b *OpenAIBackend) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = b.config.MaxTokens
	}

	chatReq := openai.ChatCompletionRequest{
		Model: b.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful assistant.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	}
	if req.JSONOutput {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openai response")
	}

	return &GenerateResponse{
		Text:         strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens: resp.Usage.PromptTokens,
	}, nil
}

// baseURLWithV1 appends the /v1 prefix the OpenAI client expects.
func baseURLWithV1(addr string) string {
	addr = strings.TrimSuffix(addr, "/")
	if strings.HasSuffix(addr, "/v1") {
		return addr
	}
	return addr + "/v1"
}
