package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "library.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening must not re-run migrations.
	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	version, err := second.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, legacyAdoptionVersion, version)
}

func TestBookStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	books := store.BookStore()
	ctx := context.Background()

	id, err := books.Save(ctx, &domain.Book{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Description: "A desert planet and its spice.",
		CatalogID:   "gb-dune",
		ISBN:        "9780441013593",
		Status:      domain.StatusNew,
		Metadata:    map[string]any{"language": "en"},
	})
	require.NoError(t, err)
	require.Positive(t, id)

	book, err := books.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Equal(t, "gb-dune", book.CatalogID)
	assert.Equal(t, domain.StatusNew, book.Status)
	assert.Equal(t, "en", book.Metadata["language"])
	assert.False(t, book.CreatedAt.IsZero())
}

func TestBookStore_Save_DefaultsStatus(t *testing.T) {
	store := newTestStore(t)
	books := store.BookStore()
	ctx := context.Background()

	id, err := books.Save(ctx, &domain.Book{Title: "Untracked"})
	require.NoError(t, err)

	book, err := books.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, book.Status)
}

func TestBookStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.BookStore().Get(context.Background(), 99)

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookStore_FindByTitleAuthor(t *testing.T) {
	store := newTestStore(t)
	books := store.BookStore()
	ctx := context.Background()

	_, err := books.Save(ctx, &domain.Book{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	_, err = books.Save(ctx, &domain.Book{Title: "Anonymous Work"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		title  string
		author string
		want   string
	}{
		{"exact", "Dune", "Frank Herbert", "Dune"},
		{"case insensitive", "dUNE", "FRANK herbert", "Dune"},
		{"padded input", " Dune ", " Frank Herbert ", "Dune"},
		{"empty query author matches title", "Dune", "", "Dune"},
		{"stored empty author matches any", "Anonymous Work", "Whoever", "Anonymous Work"},
		{"wrong author", "Dune", "Dan Simmons", ""},
		{"unknown title", "Hyperion", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := books.FindByTitleAuthor(ctx, tt.title, tt.author)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, book)
			} else {
				require.NotNil(t, book)
				assert.Equal(t, tt.want, book.Title)
			}
		})
	}
}

func TestBookStore_FindByCatalogID(t *testing.T) {
	store := newTestStore(t)
	books := store.BookStore()
	ctx := context.Background()

	_, err := books.Save(ctx, &domain.Book{Title: "Dune", CatalogID: "gb-dune"})
	require.NoError(t, err)
	// Empty catalog IDs must not collide under the unique index.
	_, err = books.Save(ctx, &domain.Book{Title: "Bare One"})
	require.NoError(t, err)
	_, err = books.Save(ctx, &domain.Book{Title: "Bare Two"})
	require.NoError(t, err)

	found, err := books.FindByCatalogID(ctx, "gb-dune")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Dune", found.Title)

	missing, err := books.FindByCatalogID(ctx, "gb-none")
	require.NoError(t, err)
	assert.Nil(t, missing)

	none, err := books.FindByCatalogID(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestBookStore_List(t *testing.T) {
	store := newTestStore(t)
	books := store.BookStore()
	ctx := context.Background()

	_, err := books.Save(ctx, &domain.Book{Title: "A", Status: domain.StatusNew})
	require.NoError(t, err)
	id, err := books.Save(ctx, &domain.Book{Title: "B", Status: domain.StatusNew})
	require.NoError(t, err)
	_, err = books.UpdateStatus(ctx, id, domain.StatusFinished)
	require.NoError(t, err)

	all, err := books.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	finished, err := books.List(ctx, domain.StatusFinished)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, "B", finished[0].Title)
}

func TestBookStore_UpdateStatusAndDelete(t *testing.T) {
	store := newTestStore(t)
	books := store.BookStore()
	ctx := context.Background()

	id, err := books.Save(ctx, &domain.Book{Title: "A"})
	require.NoError(t, err)

	ok, err := books.UpdateStatus(ctx, id, domain.StatusReading)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = books.UpdateStatus(ctx, 99, domain.StatusReading)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = books.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = books.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSourceStore_Ensure_Idempotent(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	first, err := sources.Ensure(ctx, &domain.Source{
		Kind:       "reddit",
		ExternalID: "t3_abc",
		Title:      "Best sci-fi?",
		URL:        "https://reddit.com/r/books/t3_abc",
		Metadata:   map[string]any{"subreddit": "books"},
	})
	require.NoError(t, err)

	second, err := sources.Ensure(ctx, &domain.Source{
		Kind:       "reddit",
		ExternalID: "t3_abc",
		Title:      "Edited title",
	})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	source, err := sources.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Best sci-fi?", source.Title)
	assert.Equal(t, "books", source.Metadata["subreddit"])
}

func TestSourceStore_GetByExternalID(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	_, err := sources.Ensure(ctx, &domain.Source{ExternalID: "t3_abc", Title: "Thread"})
	require.NoError(t, err)

	found, err := sources.GetByExternalID(ctx, "t3_abc")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Thread", found.Title)

	missing, err := sources.GetByExternalID(ctx, "t3_zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSourceStore_ListAndDelete(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	a, err := sources.Ensure(ctx, &domain.Source{ExternalID: "t3_a"})
	require.NoError(t, err)
	_, err = sources.Ensure(ctx, &domain.Source{ExternalID: "t3_b"})
	require.NoError(t, err)

	all, err := sources.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ok, err := sources.Delete(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = sources.Get(ctx, a)
	require.ErrorIs(t, err, domain.ErrNotFound)

	ok, err = sources.Delete(ctx, a)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMentionStore_LinkAndJoins(t *testing.T) {
	store := newTestStore(t)
	books := store.BookStore()
	sources := store.SourceStore()
	mentions := store.MentionStore()
	ctx := context.Background()

	book1, err := books.Save(ctx, &domain.Book{Title: "Dune"})
	require.NoError(t, err)
	book2, err := books.Save(ctx, &domain.Book{Title: "Hyperion"})
	require.NoError(t, err)
	src1, err := sources.Ensure(ctx, &domain.Source{ExternalID: "t3_a", Title: "Thread A"})
	require.NoError(t, err)
	src2, err := sources.Ensure(ctx, &domain.Source{ExternalID: "t3_b", Title: "Thread B"})
	require.NoError(t, err)

	require.NoError(t, mentions.Link(ctx, domain.Mention{BookID: book1, SourceID: src1}))
	require.NoError(t, mentions.Link(ctx, domain.Mention{BookID: book1, SourceID: src2}))
	require.NoError(t, mentions.Link(ctx, domain.Mention{BookID: book2, SourceID: src1}))

	// Duplicate pair is a silent no-op.
	require.NoError(t, mentions.Link(ctx, domain.Mention{BookID: book1, SourceID: src1}))

	forBook, err := mentions.SourcesForBook(ctx, book1)
	require.NoError(t, err)
	require.Len(t, forBook, 2)
	assert.Equal(t, "Thread A", forBook[0].Title)

	forSource, err := mentions.BooksForSource(ctx, src1)
	require.NoError(t, err)
	assert.Len(t, forSource, 2)

	count, err := mentions.CountSources(ctx, book1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMentionStore_DeleteForSource(t *testing.T) {
	store := newTestStore(t)
	books := store.BookStore()
	sources := store.SourceStore()
	mentions := store.MentionStore()
	ctx := context.Background()

	book, err := books.Save(ctx, &domain.Book{Title: "Dune"})
	require.NoError(t, err)
	src, err := sources.Ensure(ctx, &domain.Source{ExternalID: "t3_a"})
	require.NoError(t, err)
	require.NoError(t, mentions.Link(ctx, domain.Mention{BookID: book, SourceID: src}))

	removed, err := mentions.DeleteForSource(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err := mentions.CountSources(ctx, book)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMigrateLegacy_AdoptsDocumentsTable(t *testing.T) {
	dir := t.TempDir()

	// Simulate a pre-rewrite database: schema version 1 plus the old
	// documents table, before the adoption step has run.
	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.db.Exec("DELETE FROM schema_migrations WHERE version = ?", legacyAdoptionVersion)
	require.NoError(t, err)
	_, err = store.db.Exec(`
		CREATE TABLE documents (
			title TEXT NOT NULL,
			author TEXT,
			description TEXT,
			summary TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)
	`)
	require.NoError(t, err)
	_, err = store.db.Exec(
		"INSERT INTO documents (title, author, description, status) VALUES (?, ?, ?, ?)",
		"Dune", "Frank Herbert", "Spice.", "viewed")
	require.NoError(t, err)
	_, err = store.db.Exec("INSERT INTO documents (title) VALUES (?)", "Bare Legacy")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs the adoption step.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	books, err := store.BookStore().List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, books, 2)

	byTitle := map[string]domain.Book{}
	for _, b := range books {
		byTitle[b.Title] = b
	}
	assert.Equal(t, domain.StatusViewed, byTitle["Dune"].Status)
	assert.Equal(t, "Frank Herbert", byTitle["Dune"].Author)
	assert.Equal(t, domain.StatusNew, byTitle["Bare Legacy"].Status)

	// The legacy table is gone.
	var name string
	err = store.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'documents'",
	).Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
