// ABOUTME: Database connection management and initialization
// ABOUTME: Opens SQLite (WAL mode at an XDG path) or Postgres via pgx and applies the schema
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		// Ensure directory exists
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	// Open database with WAL mode
	db, err := sql.Open(DriverSQLite, path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// Configure connection pool for SQLite (avoid database locked errors)
	db.SetMaxOpenConns(1)

	// Initialize schema
	if err := InitSchema(db, DriverSQLite); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenPostgres connects through the pgx stdlib driver and applies the schema.
func OpenPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := InitSchema(db, DriverPostgres); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Open picks the driver and returns a ready SQLStore.
func Open(driver, pathOrDSN string) (*SQLStore, error) {
	var (
		database *sql.DB
		err      error
	)
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
		database, err = OpenDatabase(pathOrDSN)
	case DriverPostgres:
		database, err = OpenPostgres(pathOrDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return NewSQLStore(database, driver), nil
}
