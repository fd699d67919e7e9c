package driven

import (
	"context"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

// BookStore persists books.
// Backed by SQLite for metadata storage. The ingest service is the only
// writer during ingestion; the search service only updates status.
type BookStore interface {
	// Save inserts a new book and returns its store-assigned ID.
	Save(ctx context.Context, book *domain.Book) (int64, error)

	// Get retrieves a book by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id int64) (*domain.Book, error)

	// List returns books ordered newest-first, optionally filtered by
	// status. An empty status means no filter.
	List(ctx context.Context, status domain.Status) ([]domain.Book, error)

	// FindByTitleAuthor finds a book by case-insensitive trimmed title
	// and author. A stored book with an empty author matches on title
	// alone, as does an empty author argument. Returns (nil, nil) when
	// no book matches.
	FindByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error)

	// FindByCatalogID finds a book by its external catalog identifier.
	// Returns (nil, nil) when no book matches.
	FindByCatalogID(ctx context.Context, catalogID string) (*domain.Book, error)

	// UpdateStatus sets a book's status. Returns false when the book
	// does not exist.
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (bool, error)

	// Delete removes a book row. Returns false when the book does not
	// exist.
	Delete(ctx context.Context, id int64) (bool, error)
}

// SourceStore persists sources.
type SourceStore interface {
	// Ensure inserts the source if its external ID is unseen, otherwise
	// returns the existing row's ID. Re-ingesting a source is idempotent.
	Ensure(ctx context.Context, source *domain.Source) (int64, error)

	// Get retrieves a source by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id int64) (*domain.Source, error)

	// GetByExternalID retrieves a source by its natural key.
	// Returns (nil, nil) when no source matches.
	GetByExternalID(ctx context.Context, externalID string) (*domain.Source, error)

	// List returns all sources ordered newest-first.
	List(ctx context.Context) ([]domain.Source, error)

	// Delete removes a source row. Returns false when absent.
	Delete(ctx context.Context, id int64) (bool, error)
}

// MentionStore persists book-source mentions.
type MentionStore interface {
	// Link records that a book was mentioned in a source. The link is
	// unique per (book, source) pair; linking an already-linked pair is
	// a no-op regardless of context.
	Link(ctx context.Context, mention domain.Mention) error

	// SourcesForBook returns the sources a book was mentioned in.
	SourcesForBook(ctx context.Context, bookID int64) ([]domain.Source, error)

	// BooksForSource returns the books mentioned in a source.
	BooksForSource(ctx context.Context, sourceID int64) ([]domain.Book, error)

	// CountSources returns the number of distinct sources mentioning a
	// book.
	CountSources(ctx context.Context, bookID int64) (int, error)

	// DeleteForSource bulk-removes all mentions for a source and
	// returns the number removed.
	DeleteForSource(ctx context.Context, sourceID int64) (int, error)
}
