package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/marklabz/LeanRAG/internal/cache"
	"github.com/marklabz/LeanRAG/internal/corpus"
	"github.com/marklabz/LeanRAG/internal/dispatch"
	"github.com/marklabz/LeanRAG/internal/kg"
	"github.com/marklabz/LeanRAG/internal/llm"
	"github.com/marklabz/LeanRAG/internal/model"
	"github.com/marklabz/LeanRAG/internal/triple"
	"github.com/spf13/cobra"
)

var (
	levels       int
	matchWorkers int
	inferWorkers int
	entityPath   string
	refKGPath    string
	outputDir    string
	extractDesc  bool
	skipExtract  bool

	llmProvider string
	llmModel    string
	backends    []string
	callTimeout time.Duration
	maxError    int
	maxTokens   int
	rateLimit   float64

	noCache  bool
	cacheDir string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <corpus.jsonl | dir>",
	Short: "Run layered entity matching and triple extraction over a corpus",
	Long: `Extract processes one corpus file, or every .jsonl file in a
directory, through the frontier-expansion loop:

- layer 0 is seeded from the head-entity catalog (--entities)
- each layer matches the frontier against all chunks in parallel,
  extracts and verifies triples via the backend pool, and merges the
  results into the per-file triple/entity/frontier logs
- verified new entities become the next layer's frontier

Failures are isolated per corpus file; a summary count is printed at
the end.

Example:
  leanrag extract corpus/mix_chunk.jsonl --entities entities.txt --ref-kg ref_kg.jsonl
  leanrag extract corpus/ --levels 3 --backends http://gpu1:8001,http://gpu2:8002 --llm-provider vllm
  leanrag extract corpus/mix_chunk.jsonl --entities entities.txt --desc`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// Task flags
	extractCmd.Flags().IntVar(&levels, "levels", 2, "number of expansion layers to run")
	extractCmd.Flags().IntVar(&matchWorkers, "match-workers", 0, "matching workers (default: NumCPU)")
	extractCmd.Flags().IntVar(&inferWorkers, "infer-workers", 8, "inference workers")
	extractCmd.Flags().StringVar(&entityPath, "entities", "", "head-entity catalog path (required)")
	extractCmd.Flags().StringVar(&refKGPath, "ref-kg", "", "reference KG jsonl for few-shot examples")
	extractCmd.Flags().StringVar(&outputDir, "output-dir", "output", "output directory")
	extractCmd.Flags().BoolVar(&extractDesc, "desc", false, "run description enrichment after extraction")
	extractCmd.Flags().BoolVar(&skipExtract, "skip-extract", false, "skip extraction, enrich an existing triple log only")

	// LLM flags
	extractCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "backend family (openai, vllm, ollama)")
	extractCmd.Flags().StringVar(&llmModel, "llm-model", "", "model name")
	extractCmd.Flags().StringSliceVar(&backends, "backends", nil, "backend address pool (round-robin)")
	extractCmd.Flags().DurationVar(&callTimeout, "timeout", 2*time.Minute, "per-request timeout")
	extractCmd.Flags().IntVar(&maxError, "max-error", 3, "consecutive-failure budget per call")
	extractCmd.Flags().IntVar(&maxTokens, "max-tokens", 4096, "max response tokens")
	extractCmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "requests per second per backend (0 = unlimited)")

	// Cache flags
	extractCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the LLM response cache")
	extractCmd.Flags().StringVar(&cacheDir, "cache-dir", ".leanrag-cache", "response cache directory")

	_ = extractCmd.MarkFlagRequired("entities")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	if err := applyAPIKey(cfg); err != nil {
		return err
	}

	files, err := corpus.ListCorpusFiles(args[0])
	if err != nil {
		return err
	}

	pipeline, disp, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	success := 0
	for _, file := range files {
		fmt.Fprintf(os.Stderr, "Processing %s\n", file)
		start := time.Now()
		if _, err := pipeline.ProcessFile(ctx, file); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", file, err)
			continue
		}
		success++
		if verbose {
			fmt.Fprintf(os.Stderr, "Finished %s in %v\n", file, time.Since(start).Round(time.Second))
		}
	}

	m := disp.Metrics()
	fmt.Fprintf(os.Stderr, "\nLLM calls: %d (failures %d, cache hits %d, prompt tokens %d)\n",
		m.Calls, m.Failures, m.CacheHits, m.PromptTokens)
	fmt.Fprintf(os.Stderr, "Processed %d/%d files successfully\n", success, len(files))

	if success < len(files) {
		return fmt.Errorf("%d of %d corpus files failed", len(files)-success, len(files))
	}
	return nil
}

// buildConfig merges defaults with the extract command's flags.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Verbose = verbose

	if levels > 0 {
		cfg.Task.Levels = levels
	}
	if matchWorkers > 0 {
		cfg.Task.MatchWorkers = matchWorkers
	}
	if inferWorkers > 0 {
		cfg.Task.InferWorkers = inferWorkers
	}
	cfg.Task.EntityPath = entityPath
	cfg.Task.RefKGPath = refKGPath
	cfg.Task.OutputDir = outputDir
	cfg.Task.ExtractDesc = extractDesc
	cfg.Task.SkipExtract = skipExtract

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	if len(backends) > 0 {
		cfg.LLM.Backends = backends
	}
	if callTimeout > 0 {
		cfg.LLM.Timeout = callTimeout
	}
	if maxError > 0 {
		cfg.LLM.MaxError = maxError
	}
	if maxTokens > 0 {
		cfg.LLM.MaxTokens = maxTokens
	}
	cfg.LLM.RateLimit = rateLimit

	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	return cfg
}

// applyAPIKey resolves the provider API key from the environment.
func applyAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai", "":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "vllm":
		cfg.LLM.APIKey = os.Getenv("VLLM_API_KEY") // optional
	case "ollama":
		// Ollama doesn't need an API key
	}
	return nil
}

// buildPipeline wires backends, dispatcher, cache and example store.
func buildPipeline(cfg *model.Config) (*kg.Pipeline, *dispatch.Dispatcher, error) {
	llmBackends, err := llm.NewBackends(llm.Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		Timeout:   cfg.LLM.Timeout,
		MaxTokens: cfg.LLM.MaxTokens,
	}, cfg.LLM.Backends)
	if err != nil {
		return nil, nil, err
	}

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		responseCache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}

	disp, err := dispatch.New(llmBackends, dispatch.Options{
		Timeout:   cfg.LLM.Timeout,
		MaxError:  cfg.LLM.MaxError,
		Cache:     responseCache,
		CacheTTL:  cfg.Cache.TTL,
		RateLimit: cfg.LLM.RateLimit,
	})
	if err != nil {
		return nil, nil, err
	}

	var examples *triple.ExampleStore
	if cfg.Task.RefKGPath != "" {
		examples, err = triple.LoadExamples(cfg.Task.RefKGPath)
		if err != nil {
			return nil, nil, err
		}
	}

	return kg.NewPipeline(cfg, disp, examples), disp, nil
}
