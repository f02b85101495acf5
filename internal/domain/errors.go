package domain

import "errors"

var (
	// ErrInvalidTenant signals a missing or malformed tenant tag (hard input failure).
	ErrInvalidTenant = errors.New("invalid tenant")
	// ErrEmbeddingUnavailable signals an embedding provider failure or empty vector.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrScoringUnavailable signals an LLM scoring provider failure.
	ErrScoringUnavailable = errors.New("scoring unavailable")
	// ErrStoreUnavailable signals a document store failure.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrPoolSaturated signals that the scoring worker pool rejected a task.
	ErrPoolSaturated = errors.New("worker pool saturated")
)
