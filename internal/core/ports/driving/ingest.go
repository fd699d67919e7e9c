package driving

import (
	"context"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

// Ingestor runs the ingestion pipeline over a normalised thread:
// extraction, identity resolution, enrichment and dual-store
// persistence.
type Ingestor interface {
	// IngestThread processes every comment of the thread. It is
	// idempotent with respect to the thread's external ID and to
	// already-linked books. On a catalog quota error it returns the
	// partial report alongside an error wrapping
	// domain.ErrQuotaExceeded, so progress so far stays visible and a
	// retry can resume.
	IngestThread(ctx context.Context, thread *domain.Thread, opts IngestOptions) (*IngestReport, error)
}

// IngestOptions configures one ingestion run.
type IngestOptions struct {
	// Progress, when non-nil, is called after each comment with the
	// number processed so far, the total, and the titles found in that
	// comment.
	Progress func(processed, total int, found []string)
}

// IngestReport summarises one ingestion run. Counts are cumulative and
// reported even on partial failure.
type IngestReport struct {
	// SourceID is the relational ID of the (possibly pre-existing) source.
	SourceID int64

	// Mentions is the number of validated candidates extracted.
	Mentions int

	// Added is the number of new searchable books created.
	Added int

	// Linked is the number of candidates resolved to existing books.
	Linked int

	// Unsearchable is the number of new books stored without a
	// description and therefore not embedded.
	Unsearchable int
}
