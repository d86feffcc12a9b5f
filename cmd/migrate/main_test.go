package main

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crm.db")
	database, err := sql.Open(db.DriverSQLite, path)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	for _, stmt := range []string{
		"CREATE TABLE objects (id TEXT PRIMARY KEY, kind TEXT)",
		"CREATE TABLE contacts (id TEXT PRIMARY KEY, name TEXT)",
	} {
		_, err := database.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestMigrateRequiresForce(t *testing.T) {
	path := legacyDatabase(t)
	err := migrate(logging.Discard(), path, false, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-force")
}

func TestMigrateDropsLegacyAndAppliesSchema(t *testing.T) {
	path := legacyDatabase(t)
	require.NoError(t, migrate(logging.Discard(), path, false, true, true))

	database, err := sql.Open(db.DriverSQLite, path)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	tables, err := currentTables(database)
	require.NoError(t, err)
	assert.NotContains(t, tables, "objects")
	assert.Contains(t, tables, "deals")

	idType, err := idColumnType(database, "contacts")
	require.NoError(t, err)
	assert.Equal(t, "INTEGER", idType)

	backups, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	// second run is a no-op
	require.NoError(t, migrate(logging.Discard(), path, false, false, false))
}

func TestMigrateMissingFile(t *testing.T) {
	err := migrate(logging.Discard(), filepath.Join(t.TempDir(), "nope.db"), true, false, false)
	assert.Error(t, err)
}
