package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB returns an in-memory database with the schema and indexes
// applied. It is closed when the test ends.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db), "migrating test database")
	return db
}
