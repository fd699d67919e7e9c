package domain

// SearchOptions configures a semantic search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// NewOnly restricts results to books with StatusNew.
	NewOnly bool
}

// SearchResult represents a single search hit. It is transient and
// never persisted.
type SearchResult struct {
	// Book is the matched book.
	Book Book

	// Score is the similarity score in [0,1]; 1 means identical.
	Score float64

	// SourceTitles are the titles of the sources that mentioned the book.
	SourceTitles []string
}
