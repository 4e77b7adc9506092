// Package store provides SQLite-backed durable storage for accepted grid
// coordinates.
//
// The store is an append-only table:
//   - coordinates(x REAL, y REAL, id INTEGER PRIMARY KEY AUTOINCREMENT)
//
// # Guarantees
//
//   - Schema bootstrap is idempotent (CREATE TABLE IF NOT EXISTS); opening an
//     initialized database is a no-op
//   - InsertCoordinate returns only after the row is committed
//   - IDs are strictly increasing for the lifetime of the database file and
//     are opaque handles, never interpreted
//
// # Database Configuration
//
//   - WAL mode: readers (the coords command) do not block the writer
//   - synchronous=FULL: a commit survives power loss once InsertCoordinate returns
//   - busy_timeout=5000: lock waits fail after 5 seconds instead of hanging
//
// Reads are diagnostic only and are never on the ingestion path.
package store
