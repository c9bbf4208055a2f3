package llm

import (
	"fmt"
	"strings"
)

// NewBackend creates a backend for one address using the configured family.
func NewBackend(cfg Config, addr string) (Backend, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return NewOpenAIBackend(cfg, addr)
	case "vllm":
		return NewVLLMBackend(cfg, addr), nil
	case "ollama":
		return NewOllamaBackend(cfg, addr), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, vllm, ollama)", cfg.Provider)
	}
}

// NewBackends creates one backend per address for the dispatcher pool.
func NewBackends(cfg Config, addrs []string) ([]Backend, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("at least one backend address is required")
	}
	backends := make([]Backend, 0, len(addrs))
	for _, addr := range addrs {
		b, err := NewBackend(cfg, addr)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	return backends, nil
}
