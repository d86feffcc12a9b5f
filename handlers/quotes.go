// ABOUTME: Quote MCP tool handlers
// ABOUTME: Implements create_quote and list_quotes
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// QuoteStore is what quote tools read. Contacts are needed to search by name.
type QuoteStore interface {
	db.QuoteStore
	db.ContactStore
}

type QuoteHandlers struct {
	store QuoteStore
}

func NewQuoteHandlers(store QuoteStore) *QuoteHandlers {
	return &QuoteHandlers{store: store}
}

type AddressInput struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

func (a AddressInput) toModel() models.Address {
	return models.Address(a)
}

type CreateQuoteInput struct {
	Company         string       `json:"company" jsonschema:"Company the quote is for (required)"`
	ContactID       int64        `json:"contact_id" jsonschema:"Contact ID (required)"`
	DealID          int64        `json:"deal_id" jsonschema:"Deal ID (required)"`
	QuoteDate       string       `json:"quote_date,omitempty" jsonschema:"Quote date (YYYY-MM-DD, default today)"`
	ExpiresOn       string       `json:"expires_on" jsonschema:"Expiry date, after the quote date (YYYY-MM-DD, required)"`
	Status          string       `json:"status,omitempty" jsonschema:"Status (default Draft)"`
	DeliveryMethod  string       `json:"delivery_method,omitempty" jsonschema:"Delivery method (default Email)"`
	BillingAddress  AddressInput `json:"billing_address,omitempty" jsonschema:"Billing address"`
	ShippingAddress AddressInput `json:"shipping_address,omitempty" jsonschema:"Shipping address"`
}

type QuoteOutput struct {
	ID              int64          `json:"id"`
	Company         string         `json:"company"`
	ContactID       int64          `json:"contact_id"`
	DealID          int64          `json:"deal_id"`
	QuoteDate       string         `json:"quote_date"`
	ExpiresOn       string         `json:"expires_on"`
	Status          string         `json:"status"`
	DeliveryMethod  string         `json:"delivery_method"`
	BillingAddress  models.Address `json:"billing_address"`
	ShippingAddress models.Address `json:"shipping_address"`
	CreatedAt       string         `json:"created_at"`
}

func (h *QuoteHandlers) CreateQuote(ctx context.Context, request *mcp.CallToolRequest, input CreateQuoteInput) (*mcp.CallToolResult, QuoteOutput, error) {
	if input.ExpiresOn == "" {
		return nil, QuoteOutput{}, fmt.Errorf("expires_on is required")
	}

	quote := &models.Quote{
		Company:         input.Company,
		ContactID:       input.ContactID,
		DealID:          input.DealID,
		Status:          input.Status,
		DeliveryMethod:  input.DeliveryMethod,
		BillingAddress:  input.BillingAddress.toModel(),
		ShippingAddress: input.ShippingAddress.toModel(),
	}

	var err error
	if input.QuoteDate != "" {
		if quote.QuoteDate, err = parseDate("quote_date", input.QuoteDate); err != nil {
			return nil, QuoteOutput{}, err
		}
	} else {
		quote.QuoteDate = today()
	}
	if quote.ExpiresOn, err = parseDate("expires_on", input.ExpiresOn); err != nil {
		return nil, QuoteOutput{}, err
	}

	if err := h.store.CreateQuote(ctx, quote); err != nil {
		return nil, QuoteOutput{}, fmt.Errorf("failed to create quote: %w", err)
	}

	return nil, quoteToOutput(quote), nil
}

type ListQuotesInput struct {
	DealID int64  `json:"deal_id,omitempty" jsonschema:"Only quotes for this deal"`
	Status string `json:"status,omitempty" jsonschema:"Only quotes with this status"`
	Query  string `json:"query,omitempty" jsonschema:"Search text matched against company, status, and contact name"`
}

type ListQuotesOutput struct {
	Quotes []QuoteOutput `json:"quotes"`
	Count  int           `json:"count"`
}

func (h *QuoteHandlers) ListQuotes(ctx context.Context, request *mcp.CallToolRequest, input ListQuotesInput) (*mcp.CallToolResult, ListQuotesOutput, error) {
	filter := QuoteFilter{DealID: input.DealID, Status: input.Status, Query: input.Query}
	if err := filter.Validate(); err != nil {
		return nil, ListQuotesOutput{}, err
	}

	quotes, err := h.store.ListQuotes(ctx)
	if err != nil {
		return nil, ListQuotesOutput{}, fmt.Errorf("failed to list quotes: %w", err)
	}
	contacts, err := h.store.ListContacts(ctx)
	if err != nil {
		return nil, ListQuotesOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	output := ListQuotesOutput{Quotes: []QuoteOutput{}}
	for _, q := range FilterQuotes(quotes, ContactIndex(contacts), filter) {
		output.Quotes = append(output.Quotes, quoteToOutput(&q))
	}
	output.Count = len(output.Quotes)

	return nil, output, nil
}

func quoteToOutput(q *models.Quote) QuoteOutput {
	return QuoteOutput{
		ID:              q.ID,
		Company:         q.Company,
		ContactID:       q.ContactID,
		DealID:          q.DealID,
		QuoteDate:       q.QuoteDate.Format(dateLayout),
		ExpiresOn:       q.ExpiresOn.Format(dateLayout),
		Status:          q.Status,
		DeliveryMethod:  q.DeliveryMethod,
		BillingAddress:  q.BillingAddress,
		ShippingAddress: q.ShippingAddress,
		CreatedAt:       formatTime(q.CreatedAt),
	}
}
