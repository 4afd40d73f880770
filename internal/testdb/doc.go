//go:build integration

// Package testdb sets up the PostgreSQL database used by integration tests.
//
// Every test runs in its own transaction which is rolled back when the test
// finishes, so tests can share one schema without cleanup:
//
//	func TestPathStore(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(tx *sqlx.Tx) {
//	        paths := postgres.NewPostgresPathStore(tx, nil)
//	        ...
//	    })
//	}
//
// Tests are skipped when no database URL is configured.
package testdb
