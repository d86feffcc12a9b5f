// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, and delete_contact tools
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	store db.ContactStore
	board *pipeline.Board
}

// NewContactHandlers keeps the board's contact lookup in step when board is non-nil.
func NewContactHandlers(store db.ContactStore, board *pipeline.Board) *ContactHandlers {
	return &ContactHandlers{store: store, board: board}
}

type AddContactInput struct {
	FirstName string `json:"first_name" jsonschema:"First name (required)"`
	LastName  string `json:"last_name" jsonschema:"Last name (required)"`
	Email     string `json:"email" jsonschema:"Email address (required)"`
	Phone     string `json:"phone" jsonschema:"Phone number (required)"`
	Company   string `json:"company,omitempty" jsonschema:"Company the contact works for"`
	Position  string `json:"position,omitempty" jsonschema:"Job title"`
}

type ContactOutput struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Company      string  `json:"company,omitempty"`
	Position     string  `json:"position,omitempty"`
	LastActivity *string `json:"last_activity,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	contact := &models.Contact{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Company:   input.Company,
		Position:  input.Position,
	}

	if err := h.store.CreateContact(ctx, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}
	if h.board != nil {
		h.board.UpsertContact(*contact)
	}

	return nil, contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search text matched against name, email, and company"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Count    int             `json:"count"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	contacts, err := h.store.ListContacts(ctx)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	output := FindContactsOutput{Contacts: []ContactOutput{}}
	for i := range contacts {
		if !ContactMatches(&contacts[i], input.Query) {
			continue
		}
		output.Contacts = append(output.Contacts, contactToOutput(&contacts[i]))
		if len(output.Contacts) == limit {
			break
		}
	}
	output.Count = len(output.Contacts)

	return nil, output, nil
}

type DeleteContactInput struct {
	ID int64 `json:"id" jsonschema:"Contact ID (required)"`
}

// DeleteContact removes only the contact. Deals and tasks that pointed at it
// keep their reference and render without a contact name.
func (h *ContactHandlers) DeleteContact(ctx context.Context, request *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == 0 {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}

	if err := h.store.DeleteContact(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}
	if h.board != nil {
		h.board.RemoveContact(input.ID)
	}

	return nil, DeleteOutput{
		Success: true,
		Message: fmt.Sprintf("Contact %d deleted successfully", input.ID),
	}, nil
}

// ContactMatches does a case-insensitive substring match on name, email, and company.
func ContactMatches(c *models.Contact, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{c.FullName(), c.Email, c.Company} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func contactToOutput(contact *models.Contact) ContactOutput {
	output := ContactOutput{
		ID:        contact.ID,
		Name:      contact.FullName(),
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Company:   contact.Company,
		Position:  contact.Position,
		CreatedAt: formatTime(contact.CreatedAt),
	}
	if contact.LastActivity != nil {
		s := formatTime(*contact.LastActivity)
		output.LastActivity = &s
	}
	return output
}
