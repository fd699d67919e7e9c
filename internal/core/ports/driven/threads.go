package driven

import (
	"context"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

// ThreadResolver loads a discussion thread from a reference, which may
// be a platform URL or a path to a locally cached JSON file, and
// normalises it into a domain.Thread with a flattened comment list.
//
// A thread whose JSON does not have the expected shape is a hard
// failure (domain.ErrInvalidThread): the whole source is unusable.
type ThreadResolver interface {
	// Resolve fetches and normalises the thread behind ref.
	Resolve(ctx context.Context, ref string) (*domain.Thread, error)

	// ExternalID extracts the platform's natural thread key from ref,
	// or returns "" when none can be derived. Used to short-circuit
	// re-ingestion before fetching.
	ExternalID(ref string) string
}
