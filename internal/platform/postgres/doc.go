// Package postgres implements the internal/store interfaces on PostgreSQL.
// Queries go through sqlx over the pgx stdlib driver, the schema is owned by
// the embedded goose migrations in this package, and driver errors are
// mapped onto the store sentinels by MapError.
package postgres
