// ABOUTME: Migration utility that brings a SQLite database onto the dealboard schema
// ABOUTME: Backs up the file, drops tables from the older contact tracker, and applies the DDL
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/logging"
	_ "github.com/mattn/go-sqlite3"
)

// legacyTables belong to the uuid-keyed contact tracker this CRM replaced.
var legacyTables = []string{
	"objects", "relationships", "companies", "notes",
	"interactions", "followup_queue", "contact_cadence",
	"sync_log", "sync_state",
}

func main() {
	dbPath := flag.String("db", "", "Path to database file (required)")
	dryRun := flag.Bool("dry-run", false, "Print the schema and planned changes without touching the file")
	backup := flag.Bool("backup", true, "Create backup before migration")
	force := flag.Bool("force", false, "Drop legacy tables even though their data is lost")
	flag.Parse()

	logger, _ := logging.New(os.Stderr, "info", "text")

	if *dbPath == "" {
		logger.Fatal("-db flag is required")
	}

	if err := migrate(logger, *dbPath, *dryRun, *backup, *force); err != nil {
		logger.Fatal("migration failed", "err", err)
	}
	logger.Info("migration completed successfully")
}

func migrate(logger *log.Logger, dbPath string, dryRun, createBackup, force bool) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", dbPath)
	}

	database, err := sql.Open(db.DriverSQLite, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	tables, err := currentTables(database)
	if err != nil {
		return fmt.Errorf("failed to get current tables: %w", err)
	}
	logger.Info("current tables", "tables", strings.Join(tables, ","))

	drop, err := tablesToDrop(database, tables)
	if err != nil {
		return err
	}

	if dryRun {
		ddl, err := db.Schema(db.DriverSQLite)
		if err != nil {
			return err
		}
		if len(drop) > 0 {
			fmt.Printf("-- would drop: %s\n", strings.Join(drop, ", "))
		}
		fmt.Println(ddl)
		return nil
	}

	if len(drop) > 0 && !force {
		logger.Warn("migration will drop legacy tables", "tables", strings.Join(drop, ","))
		return fmt.Errorf("migration requires -force flag")
	}

	if createBackup {
		backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(dbPath)
		if err != nil {
			return fmt.Errorf("failed to read database: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0600); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		logger.Info("backup created", "path", backupPath)
	}

	for _, table := range drop {
		if _, err := database.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
		logger.Info("dropped table", "table", table)
	}

	if err := db.InitSchema(database, db.DriverSQLite); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}

// tablesToDrop lists legacy tables plus contacts or deals tables that still
// use text ids.
func tablesToDrop(database *sql.DB, tables []string) ([]string, error) {
	var drop []string
	for _, table := range tables {
		if slices.Contains(legacyTables, table) {
			drop = append(drop, table)
			continue
		}
		if table != "contacts" && table != "deals" {
			continue
		}
		idType, err := idColumnType(database, table)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(idType, "INTEGER") {
			drop = append(drop, table)
		}
	}
	return drop, nil
}

func currentTables(database *sql.DB) ([]string, error) {
	rows, err := database.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func idColumnType(database *sql.DB, table string) (string, error) {
	rows, err := database.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return "", err
		}
		if name == "id" {
			return typ, nil
		}
	}
	return "", rows.Err()
}
