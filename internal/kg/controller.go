// Package kg orchestrates the frontier-expansion extraction loop: for each
// layer, match every text unit against the current frontier in parallel,
// extract and verify triples around the matches via the dispatcher, then
// merge results single-threaded into the global accumulators that seed the
// next layer.
package kg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marklabz/LeanRAG/internal/corpus"
	"github.com/marklabz/LeanRAG/internal/dispatch"
	"github.com/marklabz/LeanRAG/internal/match"
	"github.com/marklabz/LeanRAG/internal/model"
	"github.com/marklabz/LeanRAG/internal/prompt"
	"github.com/marklabz/LeanRAG/internal/triple"
	"github.com/marklabz/LeanRAG/internal/worker"
)

// Pipeline runs the extraction and enrichment stages for corpus files.
type Pipeline struct {
	cfg      *model.Config
	disp     *dispatch.Dispatcher
	matcher  *match.Matcher
	examples *triple.ExampleStore
}

// NewPipeline creates a pipeline. examples may be nil when no reference KG
// is configured.
func NewPipeline(cfg *model.Config, disp *dispatch.Dispatcher, examples *triple.ExampleStore) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		disp:     disp,
		matcher:  match.NewMatcher(),
		examples: examples,
	}
}

// filePaths are the per-corpus-file artifact locations.
type filePaths struct {
	outDir   string
	triples  string // jsonl, append
	entities string // txt, full rewrite per merge
	frontier string // txt, append per layer
	matches  string // jsonl, rewrite per layer
}

func (p *Pipeline) pathsFor(corpusPath string) filePaths {
	name := corpus.Stem(corpusPath)
	outDir := filepath.Join(p.cfg.Task.OutputDir, name)
	return filePaths{
		outDir:   outDir,
		triples:  filepath.Join(outDir, fmt.Sprintf("new_triples_%s.jsonl", name)),
		entities: filepath.Join(outDir, fmt.Sprintf("all_entities_%s.txt", name)),
		frontier: filepath.Join(outDir, fmt.Sprintf("next_layer_entities_%s.txt", name)),
		matches:  filepath.Join(outDir, fmt.Sprintf("match_words_%s.jsonl", name)),
	}
}

// TriplePath returns where the triple log for a corpus file lives.
func (p *Pipeline) TriplePath(corpusPath string) string {
	return p.pathsFor(corpusPath).triples
}

// ProcessFile runs the configured stages for one corpus file. A failure
// marks this file failed only; sibling files continue.
func (p *Pipeline) ProcessFile(ctx context.Context, corpusPath string) ([]model.LayerStats, error) {
	paths := p.pathsFor(corpusPath)
	if err := os.MkdirAll(paths.outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := copyFile(corpusPath, filepath.Join(paths.outDir, filepath.Base(corpusPath))); err != nil {
		return nil, err
	}

	var stats []model.LayerStats
	if !p.cfg.Task.SkipExtract {
		var err error
		stats, err = p.extract(ctx, corpusPath, paths)
		if err != nil {
			return stats, err
		}
	}

	if p.cfg.Task.ExtractDesc {
		info, err := os.Stat(paths.triples)
		if err != nil || info.Size() == 0 {
			fmt.Fprintf(os.Stderr, "No triples found in %s, skip extracting descriptions\n", paths.triples)
			return stats, nil
		}
		if _, err := p.EnrichFile(ctx, paths.triples, corpusPath); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// extract runs the layered match/extract/verify/merge loop.
func (p *Pipeline) extract(ctx context.Context, corpusPath string, paths filePaths) ([]model.LayerStats, error) {
	seeds, err := corpus.ReadEntityList(p.cfg.Task.EntityPath)
	if err != nil {
		return nil, err
	}
	units, err := corpus.ReadUnits(corpusPath)
	if err != nil {
		return nil, err
	}

	// Initialize the persisted logs for this run.
	if err := writeLines(paths.frontier, seeds, false); err != nil {
		return nil, err
	}
	if err := writeJSONL(paths.triples, []model.TripleRecord{}, false); err != nil {
		return nil, err
	}
	if err := writeLines(paths.entities, nil, false); err != nil {
		return nil, err
	}

	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "corpus %s: %d paragraphs, %d seed entities\n",
			corpus.Stem(corpusPath), len(units), len(seeds))
	}

	allTriples := make(map[string]bool)
	allEntities := make(map[string]bool)
	frontier := seeds

	var layerStats []model.LayerStats
	for layer := 1; layer <= p.cfg.Task.Levels; layer++ {
		records := p.runMatching(units, frontier)
		if err := writeJSONL(paths.matches, records, false); err != nil {
			return layerStats, err
		}

		results := p.runExtraction(records)

		stats := model.LayerStats{Layer: layer, Matched: len(records)}
		nextFrontier, err := p.merge(results, paths, allTriples, allEntities, &stats)
		if err != nil {
			return layerStats, err
		}

		fmt.Fprintf(os.Stderr, "layer %d/%d: matched %d, new heads %d, new tails %d, new triples %d\n",
			layer, p.cfg.Task.Levels, stats.Matched, stats.NewHeads, stats.NewTails, stats.NewTriples)
		layerStats = append(layerStats, stats)

		// Hard barrier: the next frontier exists only after this merge.
		frontier = nextFrontier
	}
	return layerStats, nil
}

// runMatching scans all units against a frontier snapshot using the
// CPU-bound pool and keeps the non-empty match records.
func (p *Pipeline) runMatching(units []model.TextUnit, frontier []string) []model.MatchRecord {
	pool := worker.NewPool[model.MatchRecord](p.cfg.Task.MatchWorkers)
	pool.Start()
	for _, unit := range units {
		pool.Submit(func(ctx context.Context) model.MatchRecord {
			return model.MatchRecord{
				DocName:    unit.DocName,
				SourceID:   unit.SourceID,
				Text:       unit.Text,
				MatchWords: p.matcher.Match(unit.Text, frontier),
			}
		})
	}

	var records []model.MatchRecord
	for _, rec := range pool.Wait() {
		if len(rec.MatchWords) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

// extractResult is one match record's contribution, ready for merging.
type extractResult struct {
	rec      model.MatchRecord
	triples  []triple.Triple
	heads    []string
	verified []string
}

// runExtraction fans match records out over the I/O-bound pool. Each
// record's pipeline is independent: an exhausted retry budget degrades that
// record to an empty contribution without touching siblings.
func (p *Pipeline) runExtraction(records []model.MatchRecord) []extractResult {
	pool := worker.NewPool[extractResult](p.cfg.Task.InferWorkers)
	pool.Start()
	for _, rec := range records {
		pool.Submit(func(ctx context.Context) extractResult {
			return p.extractOne(ctx, rec)
		})
	}
	return pool.Wait()
}

func (p *Pipeline) extractOne(ctx context.Context, rec model.MatchRecord) extractResult {
	res := extractResult{rec: rec}

	var examples []string
	if len(rec.MatchWords) > 0 {
		examples = p.examples.Examples(rec.MatchWords[0], 3)
	} else {
		examples = p.examples.Examples("", 3)
	}

	raw, err := p.disp.Infer(ctx, prompt.ExtractTriples(rec.Text, rec.MatchWords, examples), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extraction failed for %s: %v\n", rec.SourceID, err)
		return res
	}

	var tails []string
	res.triples, res.heads, tails = triple.ParseTriples(rec.MatchWords, raw)

	if len(tails) > 0 {
		vraw, err := p.disp.Infer(ctx, prompt.VerifyEntities(tails), false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "entity verification failed for %s: %v\n", rec.SourceID, err)
		} else {
			res.verified = triple.ParseEntityList(vraw)
		}
	}
	return res
}

// merge is the single writer over the global accumulators. It is
// order-independent and idempotent: everything dedups by key, the sets only
// grow, and an entity already global never re-enters the frontier.
func (p *Pipeline) merge(results []extractResult, paths filePaths,
	allTriples, allEntities map[string]bool, stats *model.LayerStats) ([]string, error) {

	var nextFrontier []string
	for _, res := range results {
		var newRecords []model.TripleRecord
		for _, t := range res.triples {
			key := t.Key()
			if allTriples[key] {
				continue
			}
			allTriples[key] = true
			stats.NewTriples++
			newRecords = append(newRecords, model.TripleRecord{
				Triple:   t.Tab(),
				DocName:  res.rec.DocName,
				SourceID: res.rec.SourceID,
			})
		}
		if len(newRecords) > 0 {
			if err := writeJSONL(paths.triples, newRecords, true); err != nil {
				return nil, err
			}
		}

		headsAdded := false
		for _, h := range res.heads {
			key := match.FoldASCII(h)
			if key == "" || allEntities[key] {
				continue
			}
			allEntities[key] = true
			stats.NewHeads++
			headsAdded = true
		}
		if headsAdded {
			if err := writeLines(paths.entities, sortedKeys(allEntities), false); err != nil {
				return nil, err
			}
		}

		var newTails []string
		for _, e := range res.verified {
			key := match.FoldASCII(strings.TrimSpace(e))
			if key == "" || allEntities[key] {
				continue
			}
			allEntities[key] = true
			stats.NewTails++
			newTails = append(newTails, key)
		}
		if len(newTails) > 0 {
			if err := writeLines(paths.frontier, newTails, true); err != nil {
				return nil, err
			}
			nextFrontier = append(nextFrontier, newTails...)
		}
	}
	return nextFrontier, nil
}
