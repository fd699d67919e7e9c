package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driving"
	"github.com/custodia-labs/tbr-cli/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.Library = (*LibraryService)(nil)

// LibraryService provides collection management: listing, status
// updates, source removal with cascade, and index repair.
type LibraryService struct {
	books    driven.BookStore
	sources  driven.SourceStore
	mentions driven.MentionStore
	vector   driven.VectorIndex
	embedder driven.EmbeddingService
}

// NewLibraryService creates a library service. The vector index and
// embedder may be nil; removal then skips index cleanup and Reindex
// fails.
func NewLibraryService(
	books driven.BookStore,
	sources driven.SourceStore,
	mentions driven.MentionStore,
	vector driven.VectorIndex,
	embedder driven.EmbeddingService,
) *LibraryService {
	return &LibraryService{
		books:    books,
		sources:  sources,
		mentions: mentions,
		vector:   vector,
		embedder: embedder,
	}
}

// ListBooks returns books matching the options, newest-first.
func (s *LibraryService) ListBooks(ctx context.Context, opts driving.ListOptions) ([]domain.Book, error) {
	books, err := s.books.List(ctx, opts.Status)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	if opts.Filter != "" {
		needle := strings.ToLower(opts.Filter)
		filtered := books[:0]
		for _, b := range books {
			if strings.Contains(strings.ToLower(b.Title), needle) ||
				strings.Contains(strings.ToLower(b.Author), needle) {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}

	if opts.Limit > 0 && len(books) > opts.Limit {
		books = books[:opts.Limit]
	}
	return books, nil
}

// GetBook retrieves a single book.
func (s *LibraryService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.books.Get(ctx, id)
}

// SetStatus updates a book's reading status.
func (s *LibraryService) SetStatus(ctx context.Context, id int64, status domain.Status) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}
	return s.books.UpdateStatus(ctx, id, status)
}

// ListSources returns all sources with their linked book counts.
func (s *LibraryService) ListSources(ctx context.Context) ([]driving.SourceSummary, error) {
	sources, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	summaries := make([]driving.SourceSummary, 0, len(sources))
	for _, src := range sources {
		books, err := s.mentions.BooksForSource(ctx, src.ID)
		if err != nil {
			return nil, fmt.Errorf("books for source %d: %w", src.ID, err)
		}
		summaries = append(summaries, driving.SourceSummary{
			Source:    src,
			BookCount: len(books),
		})
	}
	return summaries, nil
}

// PlanRemoval previews the effect of removing a source. Books mentioned
// only in this source land in Delete; books linked elsewhere in Keep.
func (s *LibraryService) PlanRemoval(ctx context.Context, sourceID int64) (*driving.RemovalPlan, error) {
	source, err := s.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	books, err := s.mentions.BooksForSource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("books for source %d: %w", sourceID, err)
	}

	plan := &driving.RemovalPlan{Source: *source}
	for _, book := range books {
		count, err := s.mentions.CountSources(ctx, book.ID)
		if err != nil {
			return nil, fmt.Errorf("count sources for book %d: %w", book.ID, err)
		}
		if count <= 1 {
			plan.Delete = append(plan.Delete, book)
		} else {
			plan.Keep = append(plan.Keep, book)
		}
	}
	return plan, nil
}

// RemoveSource removes a source, its mentions, and every book mentioned
// nowhere else. Relational deletes are the authoritative part; vector
// deletes are best-effort and logged rather than propagated, so a dead
// index never blocks cleanup.
func (s *LibraryService) RemoveSource(ctx context.Context, sourceID int64) (*driving.RemovalReport, error) {
	logger.Section("Source removal")

	plan, err := s.PlanRemoval(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	removed, err := s.mentions.DeleteForSource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("delete mentions for source %d: %w", sourceID, err)
	}

	report := &driving.RemovalReport{
		MentionsRemoved: removed,
		BooksKept:       len(plan.Keep),
	}

	for _, book := range plan.Delete {
		if _, err := s.books.Delete(ctx, book.ID); err != nil {
			return report, fmt.Errorf("delete book %d: %w", book.ID, err)
		}
		report.BooksDeleted++

		if s.vector == nil {
			continue
		}
		if err := s.vector.Delete(ctx, book.VectorKey()); err != nil {
			logger.Warn("vector delete for book %d failed: %v", book.ID, err)
		}
	}

	if _, err := s.sources.Delete(ctx, sourceID); err != nil {
		return report, fmt.Errorf("delete source %d: %w", sourceID, err)
	}

	logger.Info("Removed source %d: %d mentions, %d books deleted, %d kept",
		sourceID, report.MentionsRemoved, report.BooksDeleted, report.BooksKept)
	return report, nil
}

// Reindex rebuilds the vector index entry for every book that has a
// description. Books without one are skipped; they are stored but not
// searchable until enriched.
func (s *LibraryService) Reindex(ctx context.Context) (*driving.ReindexReport, error) {
	logger.Section("Reindex")

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vector == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	books, err := s.books.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	report := &driving.ReindexReport{}
	for i := range books {
		book := &books[i]
		if book.Description == "" || book.Status == domain.StatusDeleted {
			report.Skipped++
			continue
		}

		sources, err := s.mentions.SourcesForBook(ctx, book.ID)
		if err != nil {
			return report, fmt.Errorf("sources for book %d: %w", book.ID, err)
		}
		titles := make([]string, len(sources))
		for j, src := range sources {
			titles[j] = src.Title
		}

		chunk := BuildChunk(book.Title, authorOrUnknown(book.Author), book.Description, titles)
		embedding, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return report, fmt.Errorf("embed book %d: %w", book.ID, err)
		}

		sourceTitle := ""
		if len(titles) > 0 {
			sourceTitle = titles[0]
		}
		if err := s.vector.Upsert(ctx, book.VectorKey(), embedding, chunk, vectorMetadata(book, sourceTitle)); err != nil {
			return report, fmt.Errorf("upsert book %d: %w", book.ID, err)
		}
		report.Embedded++
	}

	logger.Info("Reindex: %d embedded, %d skipped", report.Embedded, report.Skipped)
	return report, nil
}
