package driven

import "context"

// VectorIndex provides key-addressed storage with similarity queries.
// One entry exists per searchable book, keyed deterministically by the
// book ID; Upsert overwrites. The relational store stays canonical:
// index writes are best-effort and re-derivable via reindex.
type VectorIndex interface {
	// Upsert inserts or overwrites the entry for key.
	Upsert(ctx context.Context, key string, embedding []float32, text string, metadata map[string]string) error

	// Query returns the n nearest entries to the query vector, ordered
	// nearest-first. An empty index yields an empty slice, not an error.
	Query(ctx context.Context, embedding []float32, n int) ([]VectorHit, error)

	// Delete removes the entry for key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity query result.
type VectorHit struct {
	// Key is the matched entry's key.
	Key string

	// Metadata is the payload stored with the entry. Carries at minimum
	// the book ID, title, author and originating source title so
	// results can be displayed without a relational join.
	Metadata map[string]string

	// Distance is the cosine distance to the query, in [0,2] for
	// normalised embeddings. Similarity score is 1 - Distance.
	Distance float64
}

// Metadata keys stored with every vector entry.
const (
	MetaBookID      = "book_id"
	MetaTitle       = "title"
	MetaAuthor      = "author"
	MetaSourceTitle = "source_title"
)
