// Package memory provides in-memory implementations of the storage
// ports. Used in tests and available as a fallback when no database
// path is configured. All stores are safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
)

var _ driven.BookStore = (*BookStore)(nil)

// BookStore is an in-memory book store.
type BookStore struct {
	mu     sync.RWMutex
	nextID int64
	books  map[int64]*domain.Book
}

// NewBookStore creates an empty in-memory book store.
func NewBookStore() *BookStore {
	return &BookStore{
		nextID: 1,
		books:  make(map[int64]*domain.Book),
	}
}

// Save inserts a new book and returns its assigned ID.
func (s *BookStore) Save(_ context.Context, book *domain.Book) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	stored := *book
	stored.ID = id
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.books[id] = &stored
	return id, nil
}

// Get retrieves a book by ID.
func (s *BookStore) Get(_ context.Context, id int64) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *book
	return &copied, nil
}

// List returns books ordered newest-first, optionally filtered by status.
func (s *BookStore) List(_ context.Context, status domain.Status) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		if status != "" && b.Status != status {
			continue
		}
		books = append(books, *b)
	}
	sort.Slice(books, func(i, j int) bool {
		if books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].ID > books[j].ID
		}
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books, nil
}

// FindByTitleAuthor finds a book by case-insensitive trimmed title and
// author. An empty author on either side matches on title alone.
func (s *BookStore) FindByTitleAuthor(_ context.Context, title, author string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	title = normalise(title)
	author = normalise(author)

	for _, b := range s.books {
		if normalise(b.Title) != title {
			continue
		}
		storedAuthor := normalise(b.Author)
		if author == "" || storedAuthor == "" || storedAuthor == author {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

// FindByCatalogID finds a book by its catalog identifier.
func (s *BookStore) FindByCatalogID(_ context.Context, catalogID string) (*domain.Book, error) {
	if catalogID == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books {
		if b.CatalogID == catalogID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

// UpdateStatus sets a book's status.
func (s *BookStore) UpdateStatus(_ context.Context, id int64, status domain.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return false, nil
	}
	book.Status = status
	book.UpdatedAt = time.Now()
	return true, nil
}

// Delete removes a book row.
func (s *BookStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return false, nil
	}
	delete(s.books, id)
	return true, nil
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
