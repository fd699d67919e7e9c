package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/tbr-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to all
// library store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.tbr/data/library.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tbr", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// BookStore returns a BookStore interface backed by this store.
func (s *Store) BookStore() driven.BookStore {
	return &bookStore{store: s}
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// MentionStore returns a MentionStore interface backed by this store.
func (s *Store) MentionStore() driven.MentionStore {
	return &mentionStore{store: s}
}

// migrate runs all pending SQL migrations, then any versioned Go steps.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.schemaVersion()
	if err != nil {
		return err
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return s.migrateLegacy()
}

// schemaVersion returns the highest applied migration version.
func (s *Store) schemaVersion() (int, error) {
	var version int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("getting current version: %w", err)
	}
	return version, nil
}

// legacyAdoptionVersion is the Go migration step that adopts rows from
// a pre-rewrite "documents" table into "books".
const legacyAdoptionVersion = 2

// migrateLegacy adopts data from the pre-rewrite schema, which stored
// books in a "documents" table. The step is versioned like the SQL
// migrations so it runs exactly once; databases without the legacy
// table just record the version and move on.
func (s *Store) migrateLegacy() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}
	if version >= legacyAdoptionVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning legacy migration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var legacyTable string
	err = tx.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'documents'",
	).Scan(&legacyTable)
	switch {
	case err == sql.ErrNoRows:
		// Fresh database, nothing to adopt.
	case err != nil:
		return fmt.Errorf("checking for legacy table: %w", err)
	default:
		_, err = tx.Exec(`
			INSERT INTO books (title, author, description, summary, status, created_at, updated_at)
			SELECT title,
			       COALESCE(author, ''),
			       COALESCE(description, ''),
			       COALESCE(summary, ''),
			       COALESCE(status, 'new'),
			       COALESCE(created_at, CURRENT_TIMESTAMP),
			       COALESCE(updated_at, CURRENT_TIMESTAMP)
			FROM documents
		`)
		if err != nil {
			return fmt.Errorf("adopting legacy rows: %w", err)
		}
		if _, err := tx.Exec("DROP TABLE documents"); err != nil {
			return fmt.Errorf("dropping legacy table: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version) VALUES (?)", legacyAdoptionVersion,
	); err != nil {
		return fmt.Errorf("recording legacy migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing legacy migration: %w", err)
	}
	return nil
}

// ==================== Book Store ====================

// bookStore implements driven.BookStore.
type bookStore struct {
	store *Store
}

var _ driven.BookStore = (*bookStore)(nil)

const bookColumns = `id, title, author, description, summary, catalog_id, isbn,
	cover_url, purchase_url, status, metadata, created_at, updated_at`

// Save inserts a new book and returns its assigned ID.
func (s *bookStore) Save(ctx context.Context, book *domain.Book) (int64, error) {
	metadataJSON, err := json.Marshal(book.Metadata)
	if err != nil {
		return 0, fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now().UTC()
	status := book.Status
	if status == "" {
		status = domain.StatusNew
	}

	result, err := s.store.db.ExecContext(ctx, `
		INSERT INTO books (title, author, description, summary, catalog_id, isbn,
			cover_url, purchase_url, status, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, book.Title, book.Author, book.Description, book.Summary, book.CatalogID,
		book.ISBN, book.CoverURL, book.PurchaseURL, string(status),
		string(metadataJSON), now, now)
	if err != nil {
		return 0, fmt.Errorf("saving book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted ID: %w", err)
	}
	return id, nil
}

// Get retrieves a book by ID.
func (s *bookStore) Get(ctx context.Context, id int64) (*domain.Book, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id = ?", id)

	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning book: %w", err)
	}
	return book, nil
}

// List returns books ordered newest-first, optionally filtered by status.
func (s *bookStore) List(ctx context.Context, status domain.Status) ([]domain.Book, error) {
	query := "SELECT " + bookColumns + " FROM books"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book //nolint:prealloc // size unknown from query
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// FindByTitleAuthor finds a book by case-insensitive trimmed title and
// author. An empty author on either side matches on title alone.
func (s *bookStore) FindByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE lower(trim(title)) = lower(trim(?))
		  AND (author = '' OR ? = '' OR lower(trim(author)) = lower(trim(?)))
		LIMIT 1
	`, title, author, author)

	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning book: %w", err)
	}
	return book, nil
}

// FindByCatalogID finds a book by its external catalog identifier.
func (s *bookStore) FindByCatalogID(ctx context.Context, catalogID string) (*domain.Book, error) {
	if catalogID == "" {
		return nil, nil
	}

	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE catalog_id = ?", catalogID)

	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning book: %w", err)
	}
	return book, nil
}

// UpdateStatus sets a book's status.
func (s *bookStore) UpdateStatus(ctx context.Context, id int64, status domain.Status) (bool, error) {
	result, err := s.store.db.ExecContext(ctx,
		"UPDATE books SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("updating status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting affected rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a book row.
func (s *bookStore) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting book: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting affected rows: %w", err)
	}
	return affected > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanBook reads one book row.
func scanBook(row scanner) (*domain.Book, error) {
	var book domain.Book
	var status, metadataJSON string
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Description,
		&book.Summary, &book.CatalogID, &book.ISBN, &book.CoverURL,
		&book.PurchaseURL, &status, &metadataJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	book.Status = domain.Status(status)
	if metadataJSON != "" && metadataJSON != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON), &book.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	if createdAt.Valid {
		book.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		book.UpdatedAt = updatedAt.Time
	}
	return &book, nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

const sourceColumns = "id, kind, external_id, title, url, metadata, created_at"

// Ensure inserts the source if its external ID is unseen, otherwise
// returns the existing row's ID. The original row always wins.
func (s *sourceStore) Ensure(ctx context.Context, source *domain.Source) (int64, error) {
	existing, err := s.GetByExternalID(ctx, source.ExternalID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	metadataJSON, err := json.Marshal(source.Metadata)
	if err != nil {
		return 0, fmt.Errorf("marshalling metadata: %w", err)
	}

	result, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sources (kind, external_id, title, url, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, source.Kind, source.ExternalID, source.Title, source.URL,
		string(metadataJSON), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("saving source: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted ID: %w", err)
	}
	return id, nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id int64) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM sources WHERE id = ?", id)

	source, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	return source, nil
}

// GetByExternalID retrieves a source by its natural key.
func (s *sourceStore) GetByExternalID(ctx context.Context, externalID string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM sources WHERE external_id = ?", externalID)

	source, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	return source, nil
}

// List returns all sources ordered newest-first.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+sourceColumns+" FROM sources ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

// Delete removes a source row.
func (s *sourceStore) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting affected rows: %w", err)
	}
	return affected > 0, nil
}

// scanSource reads one source row.
func scanSource(row scanner) (*domain.Source, error) {
	var source domain.Source
	var metadataJSON string
	var createdAt sql.NullTime

	err := row.Scan(&source.ID, &source.Kind, &source.ExternalID,
		&source.Title, &source.URL, &metadataJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	if metadataJSON != "" && metadataJSON != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON), &source.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
	return &source, nil
}

// ==================== Mention Store ====================

// mentionStore implements driven.MentionStore.
type mentionStore struct {
	store *Store
}

var _ driven.MentionStore = (*mentionStore)(nil)

// Link records a mention. Duplicate (book, source) pairs are a no-op.
func (s *mentionStore) Link(ctx context.Context, mention domain.Mention) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO book_sources (book_id, source_id, context_id, score)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(book_id, source_id) DO NOTHING
	`, mention.BookID, mention.SourceID, mention.ContextID, mention.Score)
	if err != nil {
		return fmt.Errorf("linking book to source: %w", err)
	}
	return nil
}

// SourcesForBook returns the sources a book was mentioned in.
func (s *mentionStore) SourcesForBook(ctx context.Context, bookID int64) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT s.id, s.kind, s.external_id, s.title, s.url, s.metadata, s.created_at
		FROM sources s
		JOIN book_sources bs ON bs.source_id = s.id
		WHERE bs.book_id = ?
		ORDER BY s.id
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("querying sources for book: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

// BooksForSource returns the books mentioned in a source.
func (s *mentionStore) BooksForSource(ctx context.Context, sourceID int64) ([]domain.Book, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.author, b.description, b.summary, b.catalog_id,
		       b.isbn, b.cover_url, b.purchase_url, b.status, b.metadata,
		       b.created_at, b.updated_at
		FROM books b
		JOIN book_sources bs ON bs.book_id = b.id
		WHERE bs.source_id = ?
		ORDER BY b.id
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying books for source: %w", err)
	}
	defer rows.Close()

	var books []domain.Book //nolint:prealloc // size unknown from query
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// CountSources returns the number of distinct sources mentioning a book.
func (s *mentionStore) CountSources(ctx context.Context, bookID int64) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT source_id) FROM book_sources WHERE book_id = ?",
		bookID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting sources: %w", err)
	}
	return count, nil
}

// DeleteForSource bulk-removes all mentions for a source.
func (s *mentionStore) DeleteForSource(ctx context.Context, sourceID int64) (int, error) {
	result, err := s.store.db.ExecContext(ctx,
		"DELETE FROM book_sources WHERE source_id = ?", sourceID)
	if err != nil {
		return 0, fmt.Errorf("deleting mentions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting affected rows: %w", err)
	}
	return int(affected), nil
}
