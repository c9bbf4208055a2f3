package model

// TextUnit is one immutable corpus record. SourceID is a content-addressed
// identifier, stable across runs for the same text.
type TextUnit struct {
	DocName  string `json:"doc_name"`
	SourceID string `json:"source_id"`
	Text     string `json:"text"`
}

// ChunkRecord is the on-disk corpus format: one chunk per jsonl line.
type ChunkRecord struct {
	HashCode string `json:"hash_code"`
	Text     string `json:"text"`
}

// MatchRecord is the unit of work handed to extraction: a text unit plus the
// frontier entities found inside it.
type MatchRecord struct {
	DocName    string   `json:"doc_name"`
	SourceID   string   `json:"source_id"`
	Text       string   `json:"text"`
	MatchWords []string `json:"match_words"`
}

// TripleRecord is one persisted triple log line. Triple is a tab-joined
// subject/predicate/object string; after description enrichment it carries
// three additional tab-separated description fields.
type TripleRecord struct {
	Triple   string `json:"triple"`
	DocName  string `json:"doc_name"`
	SourceID string `json:"source_id"`

	// Text is the rehydrated source chunk, populated only while the
	// enrichment stage is running. Never persisted.
	Text string `json:"-"`
}
