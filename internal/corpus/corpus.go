// Package corpus loads text units, entity catalogs and reference examples
// from disk. Everything here is line-oriented: jsonl for records, plain text
// for entity lists.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marklabz/LeanRAG/internal/model"
)

// ReadUnits reads a corpus file into TextUnits. The file is either jsonl
// (one {"hash_code","text"} object per line) or a single json array of the
// same objects. DocName is derived from the file name.
func ReadUnits(path string) ([]model.TextUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	docName := Stem(path)
	var chunks []model.ChunkRecord

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &chunks); err != nil {
			return nil, fmt.Errorf("parse corpus array: %w", err)
		}
	} else {
		for i, line := range strings.Split(trimmed, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var c model.ChunkRecord
			if err := json.Unmarshal([]byte(line), &c); err != nil {
				return nil, fmt.Errorf("parse corpus line %d: %w", i+1, err)
			}
			chunks = append(chunks, c)
		}
	}

	units := make([]model.TextUnit, 0, len(chunks))
	for _, c := range chunks {
		id := c.HashCode
		if id == "" {
			id = HashID(c.Text)
		}
		units = append(units, model.TextUnit{
			DocName:  docName,
			SourceID: id,
			Text:     c.Text,
		})
	}
	return units, nil
}

// ReadEntityList reads entities from a file (one per line), skipping blank
// lines and # comments, deduplicating while preserving order.
func ReadEntityList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open entity list: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entities []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			entities = append(entities, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan entity list: %w", err)
	}
	return entities, nil
}

// Stem returns the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListCorpusFiles resolves a path to the corpus files to process: the file
// itself, or every .jsonl file directly inside a directory.
func ListCorpusFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .jsonl files in %s", path)
	}
	return files, nil
}
