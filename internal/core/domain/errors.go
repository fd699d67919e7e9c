package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuotaExceeded indicates the bibliographic catalog's rate limit
	// or quota was hit. This aborts the current ingestion batch;
	// ordinary no-match lookups do not.
	ErrQuotaExceeded = errors.New("catalog quota exceeded")

	// ErrLLMUnavailable indicates the extraction LLM could not be
	// reached. Distinct from malformed LLM output, which is recovered
	// per comment.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Semantic search is disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not
	// configured or unreachable. An unreachable index is a hard failure;
	// an empty index simply yields no results.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrInvalidThread indicates the fetched thread JSON did not have
	// the expected shape. The whole source is unusable.
	ErrInvalidThread = errors.New("invalid thread format")
)
