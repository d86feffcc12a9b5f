// ABOUTME: database/sql implementation of the record store
// ABOUTME: Shared helpers for placeholder rebinding, nullable columns, inserts, and deletes
package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/dealboard/models"
)

// SQLStore implements RecordStore on SQLite or Postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
}

var _ RecordStore = (*SQLStore)(nil)

// NewSQLStore wraps an open database whose schema is already initialized.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	if driver == "" {
		driver = DriverSQLite
	}
	return &SQLStore{db: db, driver: driver}
}

// DB exposes the underlying handle for tooling such as migrations.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Driver() string {
	return s.driver
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// rebind turns ? placeholders into $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) insert(ctx context.Context, q execQueryer, query string, args ...any) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

func (s *SQLStore) exec(ctx context.Context, entity string, id int64, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &models.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func (s *SQLStore) deleteByID(ctx context.Context, table, entity string, id int64) error {
	return s.exec(ctx, entity, id, "DELETE FROM "+table+" WHERE id = ?", id)
}

func nullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}
