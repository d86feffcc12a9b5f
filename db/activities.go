// ABOUTME: Activity log database operations
// ABOUTME: Records calls, emails, meetings, and notes against contacts and deals
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/dealboard/models"
)

const activityColumns = `id, type, subject, description, contact_id, deal_id, created_at`

func scanActivity(row scanner) (*models.Activity, error) {
	var (
		a         models.Activity
		contactID sql.NullInt64
		dealID    sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.Type, &a.Subject, &a.Description, &contactID, &dealID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.ContactID = int64Ptr(contactID)
	a.DealID = int64Ptr(dealID)
	return &a, nil
}

func (s *SQLStore) ListActivities(ctx context.Context) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+activityColumns+` FROM activities ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (s *SQLStore) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+activityColumns+` FROM activities WHERE id = ?`), id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "activity", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SQLStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if err := PrepareActivity(activity); err != nil {
		return err
	}

	id, err := s.insert(ctx, s.db, `
		INSERT INTO activities (type, subject, description, contact_id, deal_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		activity.Type, activity.Subject, activity.Description,
		nullInt64(activity.ContactID), nullInt64(activity.DealID), activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	activity.ID = id
	return nil
}

func (s *SQLStore) UpdateActivity(ctx context.Context, activity *models.Activity) error {
	if err := activity.Validate(); err != nil {
		return err
	}

	return s.exec(ctx, "activity", activity.ID, `
		UPDATE activities
		SET type = ?, subject = ?, description = ?, contact_id = ?, deal_id = ?
		WHERE id = ?`,
		activity.Type, activity.Subject, activity.Description,
		nullInt64(activity.ContactID), nullInt64(activity.DealID), activity.ID,
	)
}

func (s *SQLStore) DeleteActivity(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "activities", "activity", id)
}
