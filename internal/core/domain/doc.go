// Package domain defines the core business entities for tbr.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Book: A canonical recommended title, deduplicated across mentions
//   - Source: One ingested discussion thread
//   - Mention: The fact that a Book was mentioned in a Source
//   - Thread: A normalised discussion thread with flattened comments
//   - Candidate: An unvalidated title/author pair proposed by extraction
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
