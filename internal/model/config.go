package model

import (
	"runtime"
	"time"
)

// Config holds the complete pipeline configuration
type Config struct {
	Task  TaskConfig  `yaml:"task" mapstructure:"task"`
	LLM   LLMConfig   `yaml:"llm" mapstructure:"llm"`
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Verbose enables progress output on stderr
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// TaskConfig controls the frontier-expansion extraction run
type TaskConfig struct {
	// Levels is the number of expansion layers to run. The loop always runs
	// the full count; an empty frontier simply produces an empty layer.
	Levels int `yaml:"levels" mapstructure:"levels"`

	// MatchWorkers bounds the CPU-bound matching pool
	MatchWorkers int `yaml:"match_workers" mapstructure:"match_workers"`

	// InferWorkers bounds the I/O-bound extraction/verification/enrichment pool
	InferWorkers int `yaml:"infer_workers" mapstructure:"infer_workers"`

	// EntityPath is the head-entity catalog seeding layer 0 (one per line)
	EntityPath string `yaml:"entity_path" mapstructure:"entity_path"`

	// RefKGPath is the reference knowledge base supplying few-shot examples
	RefKGPath string `yaml:"ref_kg_path" mapstructure:"ref_kg_path"`

	// OutputDir receives one subdirectory of logs per corpus file
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// ExtractDesc runs the description enrichment stage after extraction
	ExtractDesc bool `yaml:"extract_desc" mapstructure:"extract_desc"`

	// SkipExtract skips extraction and runs only enrichment on an existing
	// triple log
	SkipExtract bool `yaml:"skip_extract" mapstructure:"skip_extract"`
}

// LLMConfig configures the inference backends
type LLMConfig struct {
	// Provider selects the backend family: openai, vllm, ollama
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for hosted endpoints
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Backends is the address pool served round-robin
	Backends []string `yaml:"backends" mapstructure:"backends"`

	// Timeout applies per request
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxError is the consecutive-failure budget per logical call
	MaxError int `yaml:"max_error" mapstructure:"max_error"`

	// MaxTokens limits response length
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// RateLimit is requests per second per backend (0 = unlimited)
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// CacheConfig configures the LLM response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Task: TaskConfig{
			Levels:       2,
			MatchWorkers: runtime.NumCPU(),
			InferWorkers: 8,
			OutputDir:    "output",
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Backends:  []string{"https://api.openai.com"},
			Timeout:   2 * time.Minute,
			MaxError:  3,
			MaxTokens: 4096,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".leanrag-cache",
			TTL:     24 * time.Hour,
		},
	}
}
