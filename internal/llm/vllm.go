package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// VLLMBackend talks to a vLLM server's chat completion endpoint directly.
// Reasoning-style chat templates are disabled so replies stay plain.
type VLLMBackend struct {
	addr       string
	httpClient *http.Client
	config     Config
}

type vllmRequest struct {
	Model              string         `json:"model"`
	Messages           []vllmMessage  `json:"messages"`
	MaxTokens          int            `json:"max_tokens,omitempty"`
	Temperature        float64        `json:"temperature"`
	ResponseFormat     *vllmFormat    `json:"response_format,omitempty"`
	ChatTemplateKwargs map[string]any `json:"chat_template_kwargs,omitempty"`
}

type vllmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type vllmFormat struct {
	Type string `json:"type"`
}

type vllmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
	} `json:"usage"`
}

// NewVLLMBackend creates a vLLM backend for one address.
func NewVLLMBackend(cfg Config, addr string) *VLLMBackend {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &VLLMBackend{
		addr:       strings.TrimSuffix(addr, "/"),
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// Name returns the backend family name
func (b *VLLMBackend) Name() string {
	return "vllm"
}

// Addr returns the configured base address
func (b *VLLMBackend) Addr() string {
	return b.addr
}

// Generate runs one chat completion request
func (b *VLLMBackend) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = b.config.MaxTokens
	}

	apiReq := vllmRequest{
		Model:              b.config.Model,
		Messages:           []vllmMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:          maxTokens,
		Temperature:        0,
		ChatTemplateKwargs: map[string]any{"enable_thinking": false},
	}
	if req.JSONOutput {
		apiReq.ResponseFormat = &vllmFormat{Type: "json_object"}
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", b.addr)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.config.APIKey)
	}

	httpResp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp vllmResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in vllm response")
	}

	return &GenerateResponse{
		Text:         strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens: resp.Usage.PromptTokens,
	}, nil
}
