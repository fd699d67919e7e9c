package domain

import "time"

// Source represents one ingested discussion thread or equivalent
// origin document. ExternalID is globally unique; re-ingesting the
// same external ID is idempotent and returns the existing Source.
type Source struct {
	// ID is the store-assigned identifier.
	ID int64

	// Kind identifies the source type (e.g., "reddit").
	Kind string

	// ExternalID is the origin's natural key (e.g., the thread ID).
	ExternalID string

	// Title is the thread title.
	Title string

	// URL is the origin permalink.
	URL string

	// Metadata contains arbitrary key-value pairs (e.g., subreddit).
	Metadata map[string]any

	// CreatedAt is when the source was first ingested.
	CreatedAt time.Time
}

// Mention records that a Book was mentioned within a Source. A book is
// linked to a source at most once, even when it appears in multiple
// comments of the same thread.
type Mention struct {
	// BookID links to the mentioned Book.
	BookID int64

	// SourceID links to the Source containing the mention.
	SourceID int64

	// ContextID optionally identifies the sub-context (comment ID).
	ContextID string

	// Score is a salience score for the mention (e.g., comment karma).
	Score int
}
