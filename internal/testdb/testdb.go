//go:build integration

package testdb

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/platform/postgres"
)

// Environment variables consulted for the test database, in order.
const (
	EnvTestDatabaseURL = "THINKFORGE_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// URL returns the configured test database URL or "".
func URL() string {
	for _, key := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// Open connects to the test database and applies the migrations once per
// test binary. The test is skipped when no URL is configured.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skipf("neither %s nor %s is set", EnvTestDatabaseURL, EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 5, MaxIdleConns: 2})
	require.NoError(t, err, "connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db.DB, postgres.MigrateUp, nil)
	})
	require.NoError(t, migrateErr, "migrate test database")
	return db
}

// WithTx runs fn in a transaction that is always rolled back.
func WithTx(t *testing.T, db *sqlx.DB, fn func(tx *sqlx.Tx)) {
	t.Helper()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err, "begin test transaction")
	defer func() { _ = tx.Rollback() }()
	fn(tx)
}
