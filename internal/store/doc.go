// Package store declares the persistence contracts for accounts and stats
// snapshots. Postgres, Redis and SQLite implementations live under
// internal/platform.
package store
