// ABOUTME: Deal database operations
// ABOUTME: Handles deal lifecycle and merge updates used by stage transitions
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/dealboard/models"
)

const dealColumns = `id, title, value, stage, probability, contact_id, expected_close_date, description, created_at`

func scanDeal(row scanner) (*models.Deal, error) {
	var (
		d           models.Deal
		contactID   sql.NullInt64
		closeDate   sql.NullTime
		description sql.NullString
	)
	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Value,
		&d.Stage,
		&d.Probability,
		&contactID,
		&closeDate,
		&description,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.ContactID = int64Ptr(contactID)
	d.ExpectedCloseDate = timePtr(closeDate)
	d.Description = description.String
	return &d, nil
}

func (s *SQLStore) ListDeals(ctx context.Context) ([]models.Deal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+dealColumns+` FROM deals ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, rows.Err()
}

func (s *SQLStore) getDeal(ctx context.Context, q execQueryer, id int64) (*models.Deal, error) {
	row := q.QueryRowContext(ctx, s.rebind(`SELECT `+dealColumns+` FROM deals WHERE id = ?`), id)
	d, err := scanDeal(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "deal", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SQLStore) GetDeal(ctx context.Context, id int64) (*models.Deal, error) {
	return s.getDeal(ctx, s.db, id)
}

func (s *SQLStore) CreateDeal(ctx context.Context, deal *models.Deal) error {
	if err := PrepareDeal(deal); err != nil {
		return err
	}

	id, err := s.insert(ctx, s.db, `
		INSERT INTO deals (title, value, stage, probability, contact_id, expected_close_date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		deal.Title, deal.Value, deal.Stage, deal.Probability,
		nullInt64(deal.ContactID), nullTime(deal.ExpectedCloseDate), deal.Description, deal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	deal.ID = id
	return nil
}

// UpdateDeal reads, merges, validates and writes inside one transaction so a
// concurrent writer cannot slip between the read and the write.
func (s *SQLStore) UpdateDeal(ctx context.Context, id int64, patch models.DealPatch) (*models.Deal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.getDeal(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	merged, err := MergeDeal(*current, patch)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		UPDATE deals
		SET title = ?, value = ?, stage = ?, probability = ?, contact_id = ?, expected_close_date = ?, description = ?
		WHERE id = ?`),
		merged.Title, merged.Value, merged.Stage, merged.Probability,
		nullInt64(merged.ContactID), nullTime(merged.ExpectedCloseDate), merged.Description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deal update: %w", err)
	}
	return &merged, nil
}

func (s *SQLStore) DeleteDeal(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "deals", "deal", id)
}
