package store

import "github.com/jmoiron/sqlx"

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx so store implementations
// can run inside or outside a transaction.
type DBTX interface {
	sqlx.ExtContext
}
