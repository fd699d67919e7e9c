package driven

import (
	"context"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

// CatalogClient looks up bibliographic metadata for a candidate.
//
// "No match" and "quota exceeded" are distinct conditions: the former
// returns (nil, nil) and ingestion simply skips enrichment for that
// candidate, the latter returns an error wrapping
// domain.ErrQuotaExceeded and aborts the batch. Transient network
// failures are treated as "no match", not retried.
type CatalogClient interface {
	// Lookup queries the catalog by title, optionally qualified by
	// author. Implementations retry without the author qualifier before
	// giving up.
	Lookup(ctx context.Context, title, author string) (*domain.CatalogRecord, error)
}
