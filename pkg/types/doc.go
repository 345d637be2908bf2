// Package types provides shared type definitions for the material retrieval core.
//
// This package defines the domain types exchanged between the retrieval
// components and their callers: scored hits, retrieve results, and
// analytics records.
//
// # Core Types
//
// ScoredHit references one corpus document together with its relevance
// signals:
//
//	hit := types.ScoredHit{
//	    DocumentID:     12,
//	    SourceID:       "market-review.md#3",
//	    Rank:           1,
//	    LexicalScore:   8.5,
//	    CompositeScore: 0.92,
//	}
//
// RetrieveResult wraps the ranked hits with the formatted context block
// consumed by the generation pipeline, plus cache and timing metadata.
//
// AnalyticsRecord is one entry in the append-only query log.
//
// # Validation
//
// Domain types implement validation methods to ensure data integrity:
//
//	if err := hit.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Composite scores are always normalized to [0, 1], with higher values
// indicating better matches.
package types
