// ABOUTME: Task database operations
// ABOUTME: Tasks optionally reference a contact and a deal
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/dealboard/models"
)

const taskColumns = `id, title, description, due_date, priority, status, contact_id, deal_id, created_at`

func scanTask(row scanner) (*models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		contactID   sql.NullInt64
		dealID      sql.NullInt64
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&description,
		&t.DueDate,
		&t.Priority,
		&t.Status,
		&contactID,
		&dealID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Description = description.String
	t.ContactID = int64Ptr(contactID)
	t.DealID = int64Ptr(dealID)
	return &t, nil
}

func (s *SQLStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *SQLStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "task", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *SQLStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := PrepareTask(task); err != nil {
		return err
	}

	id, err := s.insert(ctx, s.db, `
		INSERT INTO tasks (title, description, due_date, priority, status, contact_id, deal_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, task.DueDate, task.Priority, task.Status,
		nullInt64(task.ContactID), nullInt64(task.DealID), task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = id
	return nil
}

func (s *SQLStore) UpdateTask(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	return s.exec(ctx, "task", task.ID, `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, priority = ?, status = ?, contact_id = ?, deal_id = ?
		WHERE id = ?`,
		task.Title, task.Description, task.DueDate, task.Priority, task.Status,
		nullInt64(task.ContactID), nullInt64(task.DealID), task.ID,
	)
}

func (s *SQLStore) DeleteTask(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "tasks", "task", id)
}
