package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var enrichCorpus string

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich <triples.jsonl>",
	Short: "Add oracle descriptions to an existing triple log",
	Long: `Enrich re-hydrates each triple's source chunk by source id and asks
the oracle for subject/relation/object descriptions, writing a new
*_descriptions.jsonl log next to the input. Triples whose description
request fails are kept unchanged.

Example:
  leanrag enrich output/mix_chunk/new_triples_mix_chunk.jsonl --corpus corpus/mix_chunk.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().StringVar(&enrichCorpus, "corpus", "", "corpus file the triples were extracted from (required)")
	enrichCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "backend family (openai, vllm, ollama)")
	enrichCmd.Flags().StringVar(&llmModel, "llm-model", "", "model name")
	enrichCmd.Flags().StringSliceVar(&backends, "backends", nil, "backend address pool (round-robin)")
	enrichCmd.Flags().IntVar(&inferWorkers, "infer-workers", 8, "inference workers")
	enrichCmd.Flags().IntVar(&maxError, "max-error", 3, "consecutive-failure budget per call")
	enrichCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the LLM response cache")

	_ = enrichCmd.MarkFlagRequired("corpus")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	cfg.Task.SkipExtract = true
	cfg.Task.ExtractDesc = true
	if err := applyAPIKey(cfg); err != nil {
		return err
	}

	pipeline, disp, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	stats, err := pipeline.EnrichFile(context.Background(), args[0], enrichCorpus)
	if err != nil {
		return fmt.Errorf("enrich failed: %w", err)
	}

	m := disp.Metrics()
	fmt.Fprintf(os.Stderr, "LLM calls: %d (failures %d, cache hits %d)\n", m.Calls, m.Failures, m.CacheHits)
	fmt.Fprintf(os.Stderr, "Enriched %d/%d triples\n", stats.WithDescription, stats.Total)
	return nil
}
