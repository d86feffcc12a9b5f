// ABOUTME: Database schema definitions and migrations
// ABOUTME: Renders the CRM tables for SQLite or Postgres and creates them idempotently
package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// References between tables are weak: deleting a contact leaves deals,
// tasks, activities and quotes pointing at an id that no longer resolves.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS contacts (
	id {{id}},
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	company TEXT,
	position TEXT,
	last_activity {{ts}},
	created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);

CREATE TABLE IF NOT EXISTS deals (
	id {{id}},
	title TEXT NOT NULL,
	value {{real}} NOT NULL DEFAULT 0,
	stage TEXT NOT NULL,
	probability INTEGER NOT NULL DEFAULT 10,
	contact_id BIGINT,
	expected_close_date {{ts}},
	description TEXT,
	created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_contact_id ON deals(contact_id);

CREATE TABLE IF NOT EXISTS tasks (
	id {{id}},
	title TEXT NOT NULL,
	description TEXT,
	due_date {{ts}} NOT NULL,
	priority TEXT NOT NULL,
	status TEXT NOT NULL,
	contact_id BIGINT,
	deal_id BIGINT,
	created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

CREATE TABLE IF NOT EXISTS activities (
	id {{id}},
	type TEXT NOT NULL,
	subject TEXT NOT NULL,
	description TEXT NOT NULL,
	contact_id BIGINT,
	deal_id BIGINT,
	created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities(created_at);

CREATE TABLE IF NOT EXISTS quotes (
	id {{id}},
	company TEXT NOT NULL,
	contact_id BIGINT NOT NULL,
	deal_id BIGINT NOT NULL,
	quote_date {{ts}} NOT NULL,
	expires_on {{ts}} NOT NULL,
	status TEXT NOT NULL,
	delivery_method TEXT NOT NULL,
	billing_address TEXT,
	shipping_address TEXT,
	created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quotes_deal_id ON quotes(deal_id);
`

// Schema returns the DDL for the given driver.
func Schema(driver string) (string, error) {
	var r *strings.Replacer
	switch driver {
	case DriverSQLite:
		r = strings.NewReplacer(
			"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{ts}}", "DATETIME",
			"{{real}}", "REAL",
		)
	case DriverPostgres:
		r = strings.NewReplacer(
			"{{id}}", "BIGSERIAL PRIMARY KEY",
			"{{ts}}", "TIMESTAMPTZ",
			"{{real}}", "DOUBLE PRECISION",
		)
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
	return r.Replace(schemaTemplate), nil
}

func InitSchema(db *sql.DB, driver string) error {
	ddl, err := Schema(driver)
	if err != nil {
		return err
	}

	// one statement per Exec keeps both drivers happy
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
