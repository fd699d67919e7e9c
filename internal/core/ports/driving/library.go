package driving

import (
	"context"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

// Library provides management operations over the indexed collection.
type Library interface {
	// ListBooks returns books matching the options, newest-first.
	ListBooks(ctx context.Context, opts ListOptions) ([]domain.Book, error)

	// GetBook retrieves a single book. Returns domain.ErrNotFound if absent.
	GetBook(ctx context.Context, id int64) (*domain.Book, error)

	// SetStatus updates a book's reading status. Returns false (no
	// error) when the book does not exist.
	SetStatus(ctx context.Context, id int64, status domain.Status) (bool, error)

	// ListSources returns all sources with their linked book counts.
	ListSources(ctx context.Context) ([]SourceSummary, error)

	// PlanRemoval previews the effect of removing a source: which books
	// would be deleted (mentioned only there) and which kept.
	PlanRemoval(ctx context.Context, sourceID int64) (*RemovalPlan, error)

	// RemoveSource removes a source, its mentions, and every book
	// mentioned nowhere else, from both stores.
	RemoveSource(ctx context.Context, sourceID int64) (*RemovalReport, error)

	// Reindex rebuilds the vector index entry for every book with a
	// description. Idempotent; safe to run at any time.
	Reindex(ctx context.Context) (*ReindexReport, error)
}

// ListOptions filters ListBooks.
type ListOptions struct {
	// Status filters by reading status; empty means all.
	Status domain.Status

	// Filter is a case-insensitive substring match on title or author.
	Filter string

	// Limit caps the number of returned books; 0 means no cap.
	Limit int
}

// SourceSummary pairs a source with its linked book count.
type SourceSummary struct {
	Source    domain.Source
	BookCount int
}

// RemovalPlan previews a source removal.
type RemovalPlan struct {
	// Source is the source to be removed.
	Source domain.Source

	// Delete are books mentioned only in this source; they will be
	// removed from both stores.
	Delete []domain.Book

	// Keep are books mentioned elsewhere; only their link is removed.
	Keep []domain.Book
}

// RemovalReport summarises an executed source removal.
type RemovalReport struct {
	// MentionsRemoved is the number of mention rows deleted.
	MentionsRemoved int

	// BooksDeleted is the number of books removed from both stores.
	BooksDeleted int

	// BooksKept is the number of books retained (mentioned elsewhere).
	BooksKept int
}

// ReindexReport summarises a reindex run.
type ReindexReport struct {
	// Embedded is the number of books whose index entry was rebuilt.
	Embedded int

	// Skipped is the number of books without a description.
	Skipped int
}
