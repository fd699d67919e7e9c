package domain

import (
	"fmt"
	"time"
)

// Book represents a canonical recommended title, deduplicated across
// all mentions. At most one Book exists per normalised (title, author)
// pair; the ingest service enforces this, not a storage constraint.
type Book struct {
	// ID is the store-assigned identifier, stable for the Book's lifetime.
	ID int64

	// Title is the book title. Required.
	Title string

	// Author is the author name(s), comma-joined. Optional.
	Author string

	// Description is the long-form description from the catalog.
	// Books without a description are stored but not searchable.
	Description string

	// Summary is a short LLM-derived summary of the description.
	Summary string

	// CatalogID is the external bibliographic catalog identifier.
	// Unique across books when present.
	CatalogID string

	// ISBN is the ISBN-13 (preferred) or ISBN-10.
	ISBN string

	// CoverURL points at a cover thumbnail.
	CoverURL string

	// PurchaseURL points at a place to buy the book.
	PurchaseURL string

	// Status is the reading status. New books start as StatusNew.
	Status Status

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the book was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the book was last updated.
	UpdatedAt time.Time
}

// VectorKey returns the deterministic vector-store key for this book.
// One embedding exists per book; re-embedding overwrites.
func (b *Book) VectorKey() string {
	return BookVectorKey(b.ID)
}

// BookVectorKey derives the vector-store key for a book ID.
func BookVectorKey(id int64) string {
	return fmt.Sprintf("book_%d", id)
}

// Candidate is an unvalidated (title, author) pair proposed by the
// extraction step. Author may be empty.
type Candidate struct {
	Title  string
	Author string
}

// CatalogRecord is the metadata returned by the bibliographic catalog
// for a successful lookup.
type CatalogRecord struct {
	// CatalogID is the catalog's identifier for the matched volume.
	CatalogID string

	// Title is the catalog's canonical title.
	Title string

	// Authors are the catalog's author names.
	Authors []string

	// Description is the long-form description, possibly empty.
	Description string

	// ISBN is the ISBN-13 (preferred) or ISBN-10, possibly empty.
	ISBN string

	// CoverURL is a cover thumbnail URL, possibly empty.
	CoverURL string

	// PurchaseURL is a purchase link, possibly empty.
	PurchaseURL string
}
