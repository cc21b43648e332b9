// Package sqlite provides a SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. A single database connection backs:
//
//   - CorpusStore / CorpusWriter: an imported copy of the shop corpus
//   - SessionArchive: snapshots of cleared sessions
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.naviyam/data/naviyam.db
//
// # Thread Safety
//
// All operations are thread-safe. SQLite runs in WAL mode.
package sqlite
