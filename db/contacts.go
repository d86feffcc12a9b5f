// ABOUTME: Contact database operations
// ABOUTME: Contacts are looked up by weak reference and never cascade on delete
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/dealboard/models"
)

const contactColumns = `id, first_name, last_name, email, phone, company, position, last_activity, created_at`

func scanContact(row scanner) (*models.Contact, error) {
	var (
		c            models.Contact
		company      sql.NullString
		position     sql.NullString
		lastActivity sql.NullTime
	)
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&company,
		&position,
		&lastActivity,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Company = company.String
	c.Position = position.String
	c.LastActivity = timePtr(lastActivity)
	return &c, nil
}

func (s *SQLStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func (s *SQLStore) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`), id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "contact", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SQLStore) CreateContact(ctx context.Context, contact *models.Contact) error {
	if err := PrepareContact(contact); err != nil {
		return err
	}

	id, err := s.insert(ctx, s.db, `
		INSERT INTO contacts (first_name, last_name, email, phone, company, position, last_activity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Company, contact.Position, nullTime(contact.LastActivity), contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	contact.ID = id
	return nil
}

func (s *SQLStore) UpdateContact(ctx context.Context, contact *models.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}

	return s.exec(ctx, "contact", contact.ID, `
		UPDATE contacts
		SET first_name = ?, last_name = ?, email = ?, phone = ?, company = ?, position = ?, last_activity = ?
		WHERE id = ?`,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Company, contact.Position, nullTime(contact.LastActivity), contact.ID,
	)
}

func (s *SQLStore) DeleteContact(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "contacts", "contact", id)
}
