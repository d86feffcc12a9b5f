// ABOUTME: Quote database operations
// ABOUTME: Billing and shipping addresses are stored as JSON text columns
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harperreed/dealboard/models"
)

const quoteColumns = `id, company, contact_id, deal_id, quote_date, expires_on, status, delivery_method, billing_address, shipping_address, created_at`

func scanQuote(row scanner) (*models.Quote, error) {
	var (
		q        models.Quote
		billing  sql.NullString
		shipping sql.NullString
	)
	err := row.Scan(
		&q.ID,
		&q.Company,
		&q.ContactID,
		&q.DealID,
		&q.QuoteDate,
		&q.ExpiresOn,
		&q.Status,
		&q.DeliveryMethod,
		&billing,
		&shipping,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeAddress(billing, &q.BillingAddress); err != nil {
		return nil, err
	}
	if err := decodeAddress(shipping, &q.ShippingAddress); err != nil {
		return nil, err
	}
	return &q, nil
}

func decodeAddress(raw sql.NullString, into *models.Address) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw.String), into); err != nil {
		return fmt.Errorf("failed to decode address: %w", err)
	}
	return nil
}

func encodeAddress(a models.Address) (any, error) {
	if a.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SQLStore) ListQuotes(ctx context.Context) ([]models.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quoteColumns+` FROM quotes ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

func (s *SQLStore) GetQuote(ctx context.Context, id int64) (*models.Quote, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+quoteColumns+` FROM quotes WHERE id = ?`), id)
	q, err := scanQuote(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "quote", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *SQLStore) CreateQuote(ctx context.Context, quote *models.Quote) error {
	if err := PrepareQuote(quote); err != nil {
		return err
	}

	billing, err := encodeAddress(quote.BillingAddress)
	if err != nil {
		return err
	}
	shipping, err := encodeAddress(quote.ShippingAddress)
	if err != nil {
		return err
	}

	id, err := s.insert(ctx, s.db, `
		INSERT INTO quotes (company, contact_id, deal_id, quote_date, expires_on, status, delivery_method, billing_address, shipping_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quote.Company, quote.ContactID, quote.DealID, quote.QuoteDate, quote.ExpiresOn,
		quote.Status, quote.DeliveryMethod, billing, shipping, quote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	quote.ID = id
	return nil
}

func (s *SQLStore) UpdateQuote(ctx context.Context, quote *models.Quote) error {
	if err := quote.Validate(); err != nil {
		return err
	}

	billing, err := encodeAddress(quote.BillingAddress)
	if err != nil {
		return err
	}
	shipping, err := encodeAddress(quote.ShippingAddress)
	if err != nil {
		return err
	}

	return s.exec(ctx, "quote", quote.ID, `
		UPDATE quotes
		SET company = ?, contact_id = ?, deal_id = ?, quote_date = ?, expires_on = ?, status = ?, delivery_method = ?, billing_address = ?, shipping_address = ?
		WHERE id = ?`,
		quote.Company, quote.ContactID, quote.DealID, quote.QuoteDate, quote.ExpiresOn,
		quote.Status, quote.DeliveryMethod, billing, shipping, quote.ID,
	)
}

func (s *SQLStore) DeleteQuote(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "quotes", "quote", id)
}
