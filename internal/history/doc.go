// Package history keeps the record of completed translations: a bounded
// in-memory log for the session, a SQLite store for persistence across
// restarts, and a JSON export/import pair for backups.
package history
