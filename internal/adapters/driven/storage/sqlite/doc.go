// Package sqlite provides a unified SQLite-based implementation of the
// storage port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements multiple
// store interfaces through a single database connection:
//
//   - BookStore: book metadata persistence
//   - SourceStore: ingested source persistence
//   - MentionStore: book-source mention persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files. Migrations that need application logic, such as adopting rows from
// a pre-rewrite schema, run as versioned Go steps after the SQL files.
//
// # Data Location
//
// By default, the database is stored at ~/.tbr/data/library.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
