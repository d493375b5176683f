package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
)

func TestOpen_File(t *testing.T) {
	ctx := context.Background()

	cfg := database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "nested", "test.db"),
	}

	db, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.PingContext(ctx))
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestOpen_ExecAndQuery(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE people (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	result, err := db.ExecContext(ctx, `INSERT INTO people (id, name) VALUES (?, ?)`, "1", "Alice")
	require.NoError(t, err)
	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = db.ExecContext(ctx, `INSERT INTO people (id, name) VALUES (?, ?)`, "2", "Bob")
	require.NoError(t, err)

	var names []string
	require.NoError(t, db.SelectContext(ctx, &names, `SELECT name FROM people ORDER BY id`))
	assert.Equal(t, []string{"Alice", "Bob"}, names)
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	require.NoError(t, db.GetContext(ctx, &enabled, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, enabled)
}

func TestOpen_ViaFactory(t *testing.T) {
	ctx := context.Background()

	db, driver, err := database.Open(ctx, database.Config{URL: "sqlite://" + filepath.Join(t.TempDir(), "f.db")})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, database.DriverSQLite, driver)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "a.db?"+pragmas, DSN("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&"+pragmas, DSN("file:a.db?mode=rwc"))
}
