package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
)

var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore is an in-memory source store keyed by ID, with a
// secondary index on external ID for idempotent Ensure.
type SourceStore struct {
	mu         sync.RWMutex
	nextID     int64
	sources    map[int64]*domain.Source
	byExternal map[string]int64
}

// NewSourceStore creates an empty in-memory source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{
		nextID:     1,
		sources:    make(map[int64]*domain.Source),
		byExternal: make(map[string]int64),
	}
}

// Ensure inserts the source if its external ID is unseen, otherwise
// returns the existing row's ID.
func (s *SourceStore) Ensure(_ context.Context, source *domain.Source) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byExternal[source.ExternalID]; ok {
		return id, nil
	}

	id := s.nextID
	s.nextID++

	stored := *source
	stored.ID = id
	stored.CreatedAt = time.Now()
	s.sources[id] = &stored
	s.byExternal[source.ExternalID] = id
	return id, nil
}

// Get retrieves a source by ID.
func (s *SourceStore) Get(_ context.Context, id int64) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	source, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *source
	return &copied, nil
}

// GetByExternalID retrieves a source by its natural key.
func (s *SourceStore) GetByExternalID(_ context.Context, externalID string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byExternal[externalID]
	if !ok {
		return nil, nil
	}
	copied := *s.sources[id]
	return &copied, nil
}

// List returns all sources ordered newest-first.
func (s *SourceStore) List(_ context.Context) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]domain.Source, 0, len(s.sources))
	for _, src := range s.sources {
		sources = append(sources, *src)
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].ID > sources[j].ID
	})
	return sources, nil
}

// Delete removes a source row.
func (s *SourceStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.sources[id]
	if !ok {
		return false, nil
	}
	delete(s.byExternal, source.ExternalID)
	delete(s.sources, id)
	return true, nil
}
