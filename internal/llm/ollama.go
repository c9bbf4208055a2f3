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

// OllamaBackend talks to an Ollama server's generate endpoint. Replies may
// arrive either as a single JSON object or as a line-delimited stream of
// fragments; both envelopes unwrap to plain text.
type OllamaBackend struct {
	addr       string
	httpClient *http.Client
	config     Config
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaBackend creates an Ollama backend for one address.
func NewOllamaBackend(cfg Config, addr string) *OllamaBackend {
	if addr == "" {
		addr = "http://localhost:11434"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &OllamaBackend{
		addr:       strings.TrimSuffix(addr, "/"),
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// Name returns the backend family name
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// Addr returns the configured base address
func (b *OllamaBackend) Addr() string {
	return b.addr
}

// Generate runs one generate request
func (b *OllamaBackend) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = b.config.MaxTokens
	}

	apiReq := ollamaRequest{
		Model:  b.config.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: 0,
			NumPredict:  maxTokens,
		},
	}
	if req.JSONOutput {
		apiReq.Format = "json"
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", b.addr)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	return unwrapOllama(respBody)
}

// unwrapOllama handles both the single-object and the line-delimited
// streaming envelope.
func unwrapOllama(body []byte) (*GenerateResponse, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		return &GenerateResponse{
			Text:         strings.TrimSpace(resp.Response),
			PromptTokens: resp.PromptEvalCount,
		}, nil
	}

	var parts []string
	promptTokens := 0
	for _, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var fragment ollamaResponse
		if err := json.Unmarshal(line, &fragment); err != nil {
			return nil, fmt.Errorf("unmarshal stream fragment: %w", err)
		}
		parts = append(parts, fragment.Response)
		if fragment.PromptEvalCount > 0 {
			promptTokens = fragment.PromptEvalCount
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty ollama response")
	}
	return &GenerateResponse{
		Text:         strings.TrimSpace(strings.Join(parts, "")),
		PromptTokens: promptTokens,
	}, nil
}
