package testutil

import (
	"context"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"social-service/internal/db"
)

// SetupTestDB opens a private in-memory sqlite database with the full schema.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := db.Connect(db.DriverSQLite, ":memory:")
	require.NoError(t, err, "SetupTestDB: Connect")
	t.Cleanup(func() { database.Close() })
	return database
}

// SeedUsers inserts users with the given ids, named "user<id>".
func SeedUsers(t *testing.T, database *sqlx.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		_, err := database.ExecContext(context.Background(),
			database.Rebind(`INSERT INTO users (id, username, avatar_url) VALUES (?, ?, ?)`),
			id, "user"+strconv.FormatInt(id, 10), "/avatars/"+strconv.FormatInt(id, 10)+".png")
		require.NoError(t, err, "SeedUsers")
	}
}
