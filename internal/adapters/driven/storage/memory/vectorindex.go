package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a brute-force in-memory vector index using cosine
// distance. Adequate for personal-library scale; the Qdrant adapter
// covers anything larger.
type VectorIndex struct {
	mu      sync.RWMutex
	entries map[string]*vectorEntry
}

type vectorEntry struct {
	embedding []float32
	text      string
	metadata  map[string]string
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		entries: make(map[string]*vectorEntry),
	}
}

// Upsert stores or replaces the entry for key.
func (v *VectorIndex) Upsert(_ context.Context, key string, embedding []float32, text string, metadata map[string]string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	copied := make([]float32, len(embedding))
	copy(copied, embedding)

	meta := make(map[string]string, len(metadata))
	for k, val := range metadata {
		meta[k] = val
	}

	v.entries[key] = &vectorEntry{
		embedding: copied,
		text:      text,
		metadata:  meta,
	}
	return nil
}

// Query returns up to n entries ordered by ascending cosine distance.
func (v *VectorIndex) Query(_ context.Context, embedding []float32, n int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(v.entries))
	for key, entry := range v.entries {
		hits = append(hits, driven.VectorHit{
			Key:      key,
			Metadata: entry.metadata,
			Distance: cosineDistance(embedding, entry.embedding),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if n > 0 && len(hits) > n {
		hits = hits[:n]
	}
	return hits, nil
}

// Delete removes the entry for key. A missing key is not an error.
func (v *VectorIndex) Delete(_ context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.entries, key)
	return nil
}

// Close is a no-op for the in-memory index.
func (v *VectorIndex) Close() error {
	return nil
}

// cosineDistance returns 1 minus the cosine similarity of a and b.
// Mismatched lengths or zero vectors yield the maximum distance.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
