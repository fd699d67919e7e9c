package driven

import "context"

// MentionExtractor runs the extraction LLM over free text.
//
// The raw response is expected to contain a JSON array (or single
// object) of {title, author} candidates, but the adapter makes no
// guarantee beyond returning whatever the model produced; parsing and
// validation happen in the extraction filter.
type MentionExtractor interface {
	// Extract asks the LLM to list books mentioned in text and returns
	// the raw model response. Connection and timeout failures are
	// reported as errors wrapping domain.ErrLLMUnavailable; malformed
	// output is not an error at this layer.
	Extract(ctx context.Context, text string) (string, error)

	// Summarize produces a 1-2 sentence summary of a book description.
	// Descriptions too short to shorten are returned unchanged.
	Summarize(ctx context.Context, description string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
