package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
)

var _ driven.MentionStore = (*MentionStore)(nil)

// MentionStore is an in-memory mention store. It resolves books and
// sources through the sibling stores, mirroring the relational joins.
type MentionStore struct {
	mu       sync.RWMutex
	mentions []domain.Mention
	books    *BookStore
	sources  *SourceStore
}

// NewMentionStore creates a mention store backed by the given book and
// source stores.
func NewMentionStore(books *BookStore, sources *SourceStore) *MentionStore {
	return &MentionStore{
		books:   books,
		sources: sources,
	}
}

// Link records a mention. Duplicate (book, source) pairs are a no-op.
func (s *MentionStore) Link(_ context.Context, mention domain.Mention) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.mentions {
		if m.BookID == mention.BookID && m.SourceID == mention.SourceID {
			return nil
		}
	}
	s.mentions = append(s.mentions, mention)
	return nil
}

// SourcesForBook returns the sources a book was mentioned in.
func (s *MentionStore) SourcesForBook(ctx context.Context, bookID int64) ([]domain.Source, error) {
	s.mu.RLock()
	ids := make([]int64, 0)
	for _, m := range s.mentions {
		if m.BookID == bookID {
			ids = append(ids, m.SourceID)
		}
	}
	s.mu.RUnlock()

	sources := make([]domain.Source, 0, len(ids))
	for _, id := range ids {
		src, err := s.sources.Get(ctx, id)
		if err != nil {
			continue
		}
		sources = append(sources, *src)
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].ID < sources[j].ID
	})
	return sources, nil
}

// BooksForSource returns the books mentioned in a source.
func (s *MentionStore) BooksForSource(ctx context.Context, sourceID int64) ([]domain.Book, error) {
	s.mu.RLock()
	ids := make([]int64, 0)
	for _, m := range s.mentions {
		if m.SourceID == sourceID {
			ids = append(ids, m.BookID)
		}
	}
	s.mu.RUnlock()

	books := make([]domain.Book, 0, len(ids))
	for _, id := range ids {
		book, err := s.books.Get(ctx, id)
		if err != nil {
			continue
		}
		books = append(books, *book)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].ID < books[j].ID
	})
	return books, nil
}

// CountSources returns the number of distinct sources mentioning a book.
func (s *MentionStore) CountSources(_ context.Context, bookID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]bool)
	for _, m := range s.mentions {
		if m.BookID == bookID {
			seen[m.SourceID] = true
		}
	}
	return len(seen), nil
}

// DeleteForSource bulk-removes all mentions for a source.
func (s *MentionStore) DeleteForSource(_ context.Context, sourceID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.mentions[:0]
	removed := 0
	for _, m := range s.mentions {
		if m.SourceID == sourceID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.mentions = kept
	return removed, nil
}
