package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/marklabz/LeanRAG/internal/corpus"
	"github.com/spf13/cobra"
)

var (
	chunkOutput  string
	chunkSize    int
	chunkOverlap int
)

// chunkCmd represents the chunk command
var chunkCmd = &cobra.Command{
	Use:   "chunk <documents.jsonl>",
	Short: "Split raw documents into content-addressed corpus chunks",
	Long: `Chunk reads a document file (one {"input": "..."} object per line),
splits each document into overlapping windows and writes a corpus file
of {"hash_code", "text"} records ready for the extract command.

Example:
  leanrag chunk raw/mix.jsonl -o corpus/mix_chunk.jsonl --size 1024 --overlap 128`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)

	chunkCmd.Flags().StringVarP(&chunkOutput, "output", "o", "", "output corpus file (default: <input>_chunk.jsonl)")
	chunkCmd.Flags().IntVar(&chunkSize, "size", 1024, "max chunk length in runes")
	chunkCmd.Flags().IntVar(&chunkOverlap, "overlap", 128, "overlap between adjacent chunks in runes")
}

func runChunk(cmd *cobra.Command, args []string) error {
	docs, err := readDocuments(args[0])
	if err != nil {
		return err
	}

	records := corpus.Chunk(docs, chunkSize, chunkOverlap)

	out := chunkOutput
	if out == "" {
		out = strings.TrimSuffix(args[0], ".jsonl") + "_chunk.jsonl"
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Wrote %d chunks from %d documents to %s\n", len(records), len(docs), out)
	return nil
}

// readDocuments reads a jsonl file of {"input": "..."} records.
func readDocuments(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open documents: %w", err)
	}
	defer func() { _ = f.Close() }()

	var docs []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc struct {
			Input string `json:"input"`
		}
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("parse documents line %d: %w", lineNo, err)
		}
		if doc.Input != "" {
			docs = append(docs, doc.Input)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return docs, nil
}
