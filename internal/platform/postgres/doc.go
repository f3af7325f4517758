// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package: accounts in the
// users table and one JSONB stats snapshot per account in user_data. Schema
// migrations are embedded and applied with goose.
package postgres
