package corpus

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/marklabz/LeanRAG/internal/model"
)

// HashID returns the content-addressed id for a chunk of text.
func HashID(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Chunk splits documents into overlapping rune windows and assigns each
// chunk a content hash. Newlines are stripped so every chunk stays a single
// jsonl-safe line.
func Chunk(docs []string, maxRunes, overlap int) []model.ChunkRecord {
	if maxRunes <= 0 {
		maxRunes = 1024
	}
	if overlap < 0 || overlap >= maxRunes {
		overlap = maxRunes / 8
	}

	var out []model.ChunkRecord
	step := maxRunes - overlap

	for _, doc := range docs {
		runes := []rune(doc)
		for start := 0; ; start += step {
			end := start + maxRunes
			if end > len(runes) {
				end = len(runes)
			}
			text := strings.ReplaceAll(strings.TrimSpace(string(runes[start:end])), "\n", "")
			if text != "" {
				out = append(out, model.ChunkRecord{HashCode: HashID(text), Text: text})
			}
			if end >= len(runes) {
				break
			}
		}
	}
	return out
}
