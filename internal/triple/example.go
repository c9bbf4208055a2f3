package triple

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/marklabz/LeanRAG/internal/match"
)

// ExampleStore serves few-shot example triples from a reference knowledge
// base, indexed by case-folded subject.
type ExampleStore struct {
	bySubject map[string][]string
	global    []string
}

// exampleRecord is one reference KG jsonl line.
type exampleRecord struct {
	Triple string `json:"triple"`
}

// LoadExamples reads a reference KG jsonl file of {"triple": "s\tp\to"}
// records.
func LoadExamples(path string) (*ExampleStore, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference KG: %w", err)
	}
	defer func() { _ = file.Close() }()

	store := &ExampleStore{bySubject: make(map[string][]string)}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec exampleRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue // tolerate stray lines in hand-edited reference files
		}
		parts := strings.Split(rec.Triple, "\t")
		if len(parts) < 3 {
			continue
		}
		key := match.FoldASCII(strings.TrimSpace(parts[0]))
		store.bySubject[key] = append(store.bySubject[key], rec.Triple)
		store.global = append(store.global, rec.Triple)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan reference KG: %w", err)
	}
	return store, nil
}

// Examples returns up to n example triples for an entity, falling back to
// global examples when the entity is unknown or empty.
func (s *ExampleStore) Examples(entity string, n int) []string {
	if s == nil {
		return nil
	}
	if n <= 0 {
		n = 3
	}
	if entity != "" {
		if list := s.bySubject[match.FoldASCII(entity)]; len(list) > 0 {
			return capList(list, n)
		}
	}
	return capList(s.global, n)
}

func capList(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}
