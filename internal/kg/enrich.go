package kg

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/marklabz/LeanRAG/internal/corpus"
	"github.com/marklabz/LeanRAG/internal/model"
	"github.com/marklabz/LeanRAG/internal/prompt"
	"github.com/marklabz/LeanRAG/internal/triple"
	"github.com/marklabz/LeanRAG/internal/worker"
)

// DescPath returns the enriched log written next to a triple log.
func DescPath(triplePath string) string {
	return strings.TrimSuffix(triplePath, ".jsonl") + "_descriptions.jsonl"
}

// EnrichFile asks the oracle for subject/relation/object descriptions of
// every triple in the log, rehydrating each triple's source text by
// source id. The output is a new log parallel to the input; a failed
// record keeps its three-field triple rather than being dropped.
func (p *Pipeline) EnrichFile(ctx context.Context, triplePath, corpusPath string) (model.DescStats, error) {
	start := time.Now()

	units, err := corpus.ReadUnits(corpusPath)
	if err != nil {
		return model.DescStats{}, err
	}
	textByID := make(map[string]string, len(units))
	for _, u := range units {
		textByID[u.SourceID] = u.Text
	}

	records, err := readTripleRecords(triplePath)
	if err != nil {
		return model.DescStats{}, err
	}
	fmt.Fprintf(os.Stderr, "Total triples to add description: %d\n", len(records))

	for i := range records {
		records[i].Text = textByID[records[i].SourceID]
	}

	pool := worker.NewPool[model.TripleRecord](p.cfg.Task.InferWorkers)
	pool.Start()
	for _, rec := range records {
		pool.Submit(func(ctx context.Context) model.TripleRecord {
			return p.describeOne(ctx, rec)
		})
	}
	results := pool.Wait()

	if err := writeJSONL(DescPath(triplePath), results, false); err != nil {
		return model.DescStats{}, err
	}

	stats := model.DescStats{Total: len(results)}
	for _, rec := range results {
		if len(strings.Split(rec.Triple, "\t")) == 6 {
			stats.WithDescription++
		} else {
			stats.WithoutDescription++
		}
	}
	fmt.Fprintf(os.Stderr, "Description extraction completed in %v: %+v\n", time.Since(start).Round(time.Millisecond), stats)
	return stats, nil
}

func (p *Pipeline) describeOne(ctx context.Context, rec model.TripleRecord) model.TripleRecord {
	raw, err := p.disp.Infer(ctx, prompt.ExtractDescription(rec.Text, rec.Triple), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "description failed for %s: %v\n", rec.SourceID, err)
	} else {
		rec.Triple = triple.ParseDescription(rec.Triple, raw)
	}
	rec.Text = ""
	return rec
}
