package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driving"
	"github.com/custodia-labs/tbr-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// overfetchFactor is how many extra vector hits to request to
// compensate for post-filtering losses (deleted or missing books).
// Similarity ordering is preserved; the multiplier is a fixed
// heuristic, not adaptive.
const overfetchFactor = 3

// SearchService provides semantic search over the indexed collection.
// It is the only component that mutates book status as a side effect
// of a read: returned books with status "new" become "viewed".
type SearchService struct {
	books    driven.BookStore
	mentions driven.MentionStore
	vector   driven.VectorIndex
	embedder driven.EmbeddingService
}

// NewSearchService creates a new search service.
func NewSearchService(
	books driven.BookStore,
	mentions driven.MentionStore,
	vector driven.VectorIndex,
	embedder driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		books:    books,
		mentions: mentions,
		vector:   vector,
		embedder: embedder,
	}
}

// Search embeds the query, retrieves nearest entries from the vector
// index and hydrates them into ranked results, best match first.
//
// An empty index yields an empty result list; an unreachable index or
// embedder is a hard failure. Results skip books that no longer exist,
// books with status "deleted", and (when opts.NewOnly is set) books
// whose status is not "new".
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vector == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vector.Query(ctx, embedding, limit*overfetchFactor)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	logger.Debug("Vector index: %d hits for limit %d", len(hits), limit)

	results := make([]domain.SearchResult, 0, limit)
	for _, hit := range hits {
		if len(results) >= limit {
			break
		}

		result, ok, err := s.hydrate(ctx, hit, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		results = append(results, *result)
	}

	if err := s.markViewed(ctx, results); err != nil {
		return nil, err
	}

	logger.Info("Search: %d results", len(results))
	return results, nil
}

// hydrate resolves one vector hit to a full result, applying the
// status filters. The bool result reports whether the hit survived.
func (s *SearchService) hydrate(
	ctx context.Context, hit driven.VectorHit, opts domain.SearchOptions,
) (*domain.SearchResult, bool, error) {
	id, err := strconv.ParseInt(hit.Metadata[driven.MetaBookID], 10, 64)
	if err != nil {
		logger.Debug("Skipping hit %q: no book ID in metadata", hit.Key)
		return nil, false, nil
	}

	book, err := s.books.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Stale index entry for a deleted book.
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get book %d: %w", id, err)
	}

	if book.Status == domain.StatusDeleted {
		return nil, false, nil
	}
	if opts.NewOnly && book.Status != domain.StatusNew {
		return nil, false, nil
	}

	sources, err := s.mentions.SourcesForBook(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("sources for book %d: %w", id, err)
	}
	titles := make([]string, len(sources))
	for i, src := range sources {
		titles[i] = src.Title
	}

	return &domain.SearchResult{
		Book:         *book,
		Score:        1 - hit.Distance,
		SourceTitles: titles,
	}, true, nil
}

// markViewed transitions every returned "new" book to "viewed". The
// transition is one-way and idempotent; re-displaying an already
// viewed book changes nothing.
func (s *SearchService) markViewed(ctx context.Context, results []domain.SearchResult) error {
	for i := range results {
		if results[i].Book.Status != domain.StatusNew {
			continue
		}
		if _, err := s.books.UpdateStatus(ctx, results[i].Book.ID, domain.StatusViewed); err != nil {
			return fmt.Errorf("mark book %d viewed: %w", results[i].Book.ID, err)
		}
	}
	return nil
}
