package model

// LayerStats counts what one expansion layer contributed
type LayerStats struct {
	Layer      int `json:"layer"`       // 1-based
	Matched    int `json:"matched"`     // non-empty match records
	NewHeads   int `json:"new_heads"`   // anchor entities first seen this layer
	NewTails   int `json:"new_tails"`   // verified tail entities first seen this layer
	NewTriples int `json:"new_triples"` // triples first seen this layer
}

// DescStats summarizes the enrichment stage
type DescStats struct {
	Total              int `json:"total"`
	WithDescription    int `json:"with_description"`
	WithoutDescription int `json:"without_description"`
}
