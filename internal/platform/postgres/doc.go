// Package postgres provides the PostgreSQL implementations of the post and
// tag stores defined in internal/store, the Database type that owns the
// shared connection pool, and the embedded goose migrations for the schema.
//
// Constraint violations are classified by SQLSTATE code, never by message text.
package postgres
