package types

import "time"

// ScoredHit is a ranked reference to one corpus document.
type ScoredHit struct {
	// Identification
	DocumentID int    `json:"document_id"` // ordinal position in the corpus
	SourceID   string `json:"source_id"`   // stable "file#chunk" identifier
	Rank       int    `json:"rank"`        // position in result set (1-based)

	// Scoring
	LexicalScore   float64  `json:"lexical_score"`          // raw BM25 score
	VectorScore    *float64 `json:"vector_score,omitempty"` // raw cosine similarity, nil when degraded
	CompositeScore float64  `json:"composite_score"`        // weighted fusion, always in [0,1]

	// Metadata
	Variant string `json:"variant"` // query variant that produced this hit
	Source  string `json:"source"`  // source breadcrumb (file > heading path)
	Content string `json:"content"` // material text
}

// RetrieveResult is the outcome of one retrieve operation.
type RetrieveResult struct {
	Query     string        `json:"query"`
	TopK      int           `json:"top_k"`
	Hits      []ScoredHit   `json:"hits"`
	Context   string        `json:"context"` // formatted projection for the generation pipeline
	Method    string        `json:"method"`  // MethodLexical, MethodLexicalVector or MethodCache
	CacheHit  bool          `json:"cache_hit"`
	CacheTier string        `json:"cache_tier,omitempty"` // "memory" or "disk" on a cache hit
	Duration  time.Duration `json:"-"`
}

// Retrieval methods recorded in results and analytics.
const (
	MethodLexical       = "lexical"
	MethodLexicalVector = "lexical+vector"
	MethodCache         = "cache"
)

// Validate checks if the scored hit is well formed
func (h *ScoredHit) Validate() error {
	if h.DocumentID < 0 {
		return ErrInvalidDocumentID
	}

	if h.Rank < 1 {
		return ErrInvalidRank
	}

	if h.CompositeScore < 0 || h.CompositeScore > 1 {
		return ErrInvalidCompositeScore
	}

	if h.Content == "" {
		return ErrEmptyContent
	}

	return nil
}
