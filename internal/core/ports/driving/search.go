package driving

import (
	"context"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

// SearchService provides semantic search over indexed books.
type SearchService interface {
	// Search embeds the query, retrieves nearest books from the vector
	// index, joins back to relational records, filters by status and
	// returns up to opts.Limit results ranked best-first. Every
	// returned book with status "new" is transitioned to "viewed".
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
