// ABOUTME: Tests for database schema creation
// ABOUTME: Uses in-memory SQLite for fast isolated tests
package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestInitSchema(t *testing.T) {
	db, err := sql.Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := InitSchema(db, DriverSQLite); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	indexes := []string{
		"idx_contacts_email",
		"idx_deals_stage",
		"idx_deals_contact_id",
		"idx_tasks_status",
		"idx_activities_created_at",
		"idx_quotes_deal_id",
	}
	for _, idx := range indexes {
		var indexName string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&indexName)
		if err != nil {
			t.Errorf("Index %s not found: %v", idx, err)
		}
	}

	// applying twice is harmless
	if err := InitSchema(db, DriverSQLite); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}
}

func TestInitSchemaUnknownDriver(t *testing.T) {
	if err := InitSchema(nil, "oracle"); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}
