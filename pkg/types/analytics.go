package types

import "time"

// AnalyticsRecord is one entry in the append-only query log.
type AnalyticsRecord struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Query       string    `json:"query"`
	Method      string    `json:"method"` // MethodLexical, MethodLexicalVector or MethodCache
	ResultCount int       `json:"result_count"`
	LatencyMS   float64   `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
}

// Validate checks if the analytics record is well formed
func (r *AnalyticsRecord) Validate() error {
	if r.Query == "" {
		return ErrEmptyQuery
	}

	switch r.Method {
	case MethodLexical, MethodLexicalVector, MethodCache:
	default:
		return ErrUnknownMethod
	}

	if r.ResultCount < 0 {
		return ErrInvalidResultCount
	}

	return nil
}
