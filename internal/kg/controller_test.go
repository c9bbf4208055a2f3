package kg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marklabz/LeanRAG/internal/dispatch"
	"github.com/marklabz/LeanRAG/internal/llm"
	"github.com/marklabz/LeanRAG/internal/model"
)

// scriptedBackend answers by prompt kind: extraction replies with triples,
// verification re-lists entities, enrichment replies with the description
// schema.
type scriptedBackend struct {
	extractReply string
	verifyReply  string
	descReply    string
}

func (s *scriptedBackend) Name() string { return "scripted" }
func (s *scriptedBackend) Addr() string { return "http://scripted" }

func (s *scriptedBackend) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	switch {
	case strings.Contains(req.Prompt, "Analyze the entity list"):
		return &llm.GenerateResponse{Text: s.verifyReply}, nil
	case strings.Contains(req.Prompt, "[Triple]:"):
		return &llm.GenerateResponse{Text: s.descReply}, nil
	default:
		return &llm.GenerateResponse{Text: s.extractReply}, nil
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func testPipeline(t *testing.T, backend llm.Backend, cfg *model.Config) *Pipeline {
	t.Helper()
	disp, err := dispatch.New([]llm.Backend{backend}, dispatch.Options{MaxError: 3})
	if err != nil {
		t.Fatal(err)
	}
	return NewPipeline(cfg, disp, nil)
}

func TestProcessFileTwoLayers(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "city.jsonl",
		`{"hash_code": "h1", "text": "Paris is the capital of France."}`+"\n")
	entityPath := writeFile(t, dir, "entities.txt", "Paris\n")

	cfg := model.DefaultConfig()
	cfg.Task.Levels = 2
	cfg.Task.MatchWorkers = 2
	cfg.Task.InferWorkers = 2
	cfg.Task.EntityPath = entityPath
	cfg.Task.OutputDir = filepath.Join(dir, "out")

	backend := &scriptedBackend{
		extractReply: "Paris | capital of | France",
		verifyReply:  "France\nParis",
	}
	p := testPipeline(t, backend, cfg)

	stats, err := p.ProcessFile(context.Background(), corpusPath)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %v, want 2 layers", stats)
	}

	// Layer 1: Paris matches, one triple, France discovered.
	if stats[0].Matched != 1 || stats[0].NewTriples != 1 || stats[0].NewHeads != 1 || stats[0].NewTails != 1 {
		t.Errorf("layer 1 stats = %+v", stats[0])
	}
	// Layer 2: france matches but the triple is a duplicate and both
	// entities are already known; the run converges without shrinking.
	if stats[1].Matched != 1 || stats[1].NewTriples != 0 || stats[1].NewHeads != 0 || stats[1].NewTails != 0 {
		t.Errorf("layer 2 stats = %+v", stats[1])
	}

	paths := p.pathsFor(corpusPath)

	tripleLines := readLines(t, paths.triples)
	if len(tripleLines) != 1 {
		t.Fatalf("triple log = %v, want a single deduplicated record", tripleLines)
	}
	if !strings.Contains(tripleLines[0], `"Paris\tcapital of\tFrance"`) {
		t.Errorf("triple log line = %s", tripleLines[0])
	}
	if !strings.Contains(tripleLines[0], `"source_id":"h1"`) {
		t.Errorf("triple log line missing source id: %s", tripleLines[0])
	}

	entities := readLines(t, paths.entities)
	want := []string{"france", "paris"}
	if len(entities) != 2 || entities[0] != want[0] || entities[1] != want[1] {
		t.Errorf("entity log = %v, want %v", entities, want)
	}

	frontier := readLines(t, paths.frontier)
	if len(frontier) != 2 || frontier[0] != "Paris" || frontier[1] != "france" {
		t.Errorf("frontier log = %v, want [Paris france]", frontier)
	}

	// The corpus copy makes the run directory self-contained.
	if _, err := os.Stat(filepath.Join(paths.outDir, "city.jsonl")); err != nil {
		t.Errorf("corpus not copied into output dir: %v", err)
	}
}

func TestProcessFileEmptyFrontierLayerIsNoop(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "doc.jsonl",
		`{"hash_code": "h1", "text": "Nothing relevant in here."}`+"\n")
	entityPath := writeFile(t, dir, "entities.txt", "Zanzibar\n")

	cfg := model.DefaultConfig()
	cfg.Task.Levels = 3
	cfg.Task.MatchWorkers = 1
	cfg.Task.InferWorkers = 1
	cfg.Task.EntityPath = entityPath
	cfg.Task.OutputDir = filepath.Join(dir, "out")

	backend := &scriptedBackend{extractReply: "should never be asked"}
	p := testPipeline(t, backend, cfg)

	stats, err := p.ProcessFile(context.Background(), corpusPath)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	// All configured layers run; each is simply empty.
	if len(stats) != 3 {
		t.Fatalf("stats = %v, want 3 layers", stats)
	}
	for i, s := range stats {
		if s.Matched != 0 || s.NewTriples != 0 {
			t.Errorf("layer %d not empty: %+v", i+1, s)
		}
	}
}

func TestProcessFileRestartOverwritesLogs(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "city.jsonl",
		`{"hash_code": "h1", "text": "Paris is the capital of France."}`+"\n")
	entityPath := writeFile(t, dir, "entities.txt", "Paris\n")

	cfg := model.DefaultConfig()
	cfg.Task.Levels = 1
	cfg.Task.MatchWorkers = 1
	cfg.Task.InferWorkers = 1
	cfg.Task.EntityPath = entityPath
	cfg.Task.OutputDir = filepath.Join(dir, "out")

	backend := &scriptedBackend{
		extractReply: "Paris | capital of | France",
		verifyReply:  "France",
	}
	p := testPipeline(t, backend, cfg)

	for run := 0; run < 2; run++ {
		if _, err := p.ProcessFile(context.Background(), corpusPath); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	// A rerun starts from scratch instead of appending to stale logs.
	paths := p.pathsFor(corpusPath)
	if lines := readLines(t, paths.triples); len(lines) != 1 {
		t.Errorf("triple log after rerun = %v, want 1 record", lines)
	}
	if lines := readLines(t, paths.frontier); len(lines) != 2 {
		t.Errorf("frontier log after rerun = %v, want seed plus one discovery", lines)
	}
}

func TestEnrichFile(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "city.jsonl",
		`{"hash_code": "h1", "text": "Paris is the capital of France."}`+"\n")
	triplePath := writeFile(t, dir, "new_triples_city.jsonl",
		`{"triple": "Paris\tcapital of\tFrance", "doc_name": "city", "source_id": "h1"}`+"\n")

	cfg := model.DefaultConfig()
	cfg.Task.InferWorkers = 1

	backend := &scriptedBackend{
		descReply: `{"subject":{"name":"Paris","description":"Capital of France"},` +
			`"relation":{"name":"capital of","description":"Seat of government relation"},` +
			`"object":{"name":"France","description":"Country in Europe"}}`,
	}
	p := testPipeline(t, backend, cfg)

	stats, err := p.EnrichFile(context.Background(), triplePath, corpusPath)
	if err != nil {
		t.Fatalf("EnrichFile: %v", err)
	}
	if stats.Total != 1 || stats.WithDescription != 1 {
		t.Errorf("stats = %+v, want 1 enriched of 1", stats)
	}

	lines := readLines(t, DescPath(triplePath))
	if len(lines) != 1 {
		t.Fatalf("description log = %v", lines)
	}
	if !strings.Contains(lines[0], "Capital of France") {
		t.Errorf("description log line = %s", lines[0])
	}
}

func TestDescPath(t *testing.T) {
	got := DescPath("out/city/new_triples_city.jsonl")
	want := "out/city/new_triples_city_descriptions.jsonl"
	if got != want {
		t.Errorf("DescPath = %q, want %q", got, want)
	}
}
