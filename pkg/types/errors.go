package types

import "errors"

// Domain errors for type validation
var (
	// Scored hit errors
	ErrInvalidDocumentID     = errors.New("invalid document ID")
	ErrInvalidRank           = errors.New("rank must be >= 1")
	ErrInvalidCompositeScore = errors.New("composite score must be between 0 and 1")
	ErrEmptyContent          = errors.New("content cannot be empty")

	// Analytics record errors
	ErrEmptyQuery         = errors.New("query cannot be empty")
	ErrUnknownMethod      = errors.New("unknown retrieval method")
	ErrInvalidResultCount = errors.New("result count cannot be negative")
)
