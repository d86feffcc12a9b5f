// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements create_deal, update_deal, and delete_deal through the pipeline board
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DealHandlers struct {
	board *pipeline.Board
}

func NewDealHandlers(board *pipeline.Board) *DealHandlers {
	return &DealHandlers{board: board}
}

type CreateDealInput struct {
	Title             string  `json:"title" jsonschema:"Deal title (required)"`
	Value             float64 `json:"value,omitempty" jsonschema:"Deal value in dollars"`
	Stage             string  `json:"stage,omitempty" jsonschema:"Deal stage: lead, qualified, proposal, negotiation, closed-won, closed-lost (default lead)"`
	Probability       *int    `json:"probability,omitempty" jsonschema:"Win probability 0-100 (default 10 when omitted)"`
	ContactID         int64   `json:"contact_id,omitempty" jsonschema:"ID of the contact for this deal"`
	ContactName       string  `json:"contact_name,omitempty" jsonschema:"Contact name to look up when no contact_id is given"`
	ExpectedCloseDate string  `json:"expected_close_date,omitempty" jsonschema:"Expected close date (YYYY-MM-DD)"`
	Description       string  `json:"description,omitempty" jsonschema:"Free-form deal notes"`
}

type DealOutput struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Value             float64 `json:"value"`
	Stage             string  `json:"stage"`
	StageName         string  `json:"stage_name"`
	Probability       int     `json:"probability"`
	ContactID         *int64  `json:"contact_id,omitempty"`
	ContactName       string  `json:"contact_name,omitempty"`
	ExpectedCloseDate *string `json:"expected_close_date,omitempty"`
	Description       string  `json:"description,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func (h *DealHandlers) CreateDeal(ctx context.Context, request *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.Title == "" {
		return nil, DealOutput{}, fmt.Errorf("title is required")
	}
	if input.Stage != "" && !models.IsValidStage(input.Stage) {
		return nil, DealOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", input.Stage, stageList())
	}

	deal := &models.Deal{
		Title:       input.Title,
		Value:       input.Value,
		Stage:       input.Stage,
		Probability: models.ProbabilityOrDefault(input.Probability),
		ContactID:   optionalID(input.ContactID),
		Description: input.Description,
	}

	if deal.ContactID == nil && input.ContactName != "" {
		if c, ok := findContactByName(h.board.Contacts(), input.ContactName); ok {
			deal.ContactID = &c.ID
		}
	}

	if input.ExpectedCloseDate != "" {
		closeDate, err := parseDate("expected_close_date", input.ExpectedCloseDate)
		if err != nil {
			return nil, DealOutput{}, err
		}
		deal.ExpectedCloseDate = &closeDate
	}

	if err := h.board.CreateDeal(ctx, deal); err != nil {
		return nil, DealOutput{}, err
	}

	return nil, dealToOutput(h.board, *deal), nil
}

type UpdateDealInput struct {
	ID                int64    `json:"id" jsonschema:"Deal ID (required)"`
	Title             string   `json:"title,omitempty" jsonschema:"Updated deal title"`
	Value             *float64 `json:"value,omitempty" jsonschema:"Updated deal value"`
	Stage             string   `json:"stage,omitempty" jsonschema:"Updated deal stage"`
	Probability       *int     `json:"probability,omitempty" jsonschema:"Updated win probability 0-100"`
	ContactID         int64    `json:"contact_id,omitempty" jsonschema:"Updated contact ID"`
	ClearContact      bool     `json:"clear_contact,omitempty" jsonschema:"Remove the contact from the deal"`
	ExpectedCloseDate string   `json:"expected_close_date,omitempty" jsonschema:"Updated expected close date (YYYY-MM-DD)"`
	Description       *string  `json:"description,omitempty" jsonschema:"Updated description"`
}

func (h *DealHandlers) UpdateDeal(ctx context.Context, request *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == 0 {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}

	var patch models.DealPatch
	if input.Title != "" {
		patch.Title = &input.Title
	}
	patch.Value = input.Value
	if input.Stage != "" {
		if !models.IsValidStage(input.Stage) {
			return nil, DealOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", input.Stage, stageList())
		}
		patch.Stage = &input.Stage
	}
	patch.Probability = input.Probability
	patch.ContactID = optionalID(input.ContactID)
	patch.ClearContact = input.ClearContact
	if input.ExpectedCloseDate != "" {
		closeDate, err := parseDate("expected_close_date", input.ExpectedCloseDate)
		if err != nil {
			return nil, DealOutput{}, err
		}
		patch.ExpectedCloseDate = &closeDate
	}
	patch.Description = input.Description

	if patch.IsEmpty() {
		return nil, DealOutput{}, fmt.Errorf("no fields to update")
	}

	updated, err := h.board.EditDeal(ctx, input.ID, patch)
	if err != nil {
		return nil, DealOutput{}, err
	}

	return nil, dealToOutput(h.board, *updated), nil
}

type DeleteDealInput struct {
	ID int64 `json:"id" jsonschema:"Deal ID (required)"`
}

type DeleteOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, request *mcp.CallToolRequest, input DeleteDealInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == 0 {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}

	if err := h.board.DeleteDeal(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}

	return nil, DeleteOutput{
		Success: true,
		Message: fmt.Sprintf("Deal %d deleted successfully", input.ID),
	}, nil
}

func dealToOutput(board *pipeline.Board, deal models.Deal) DealOutput {
	output := DealOutput{
		ID:                deal.ID,
		Title:             deal.Title,
		Value:             deal.Value,
		Stage:             deal.Stage,
		StageName:         deal.Stage,
		Probability:       deal.Probability,
		ContactID:         deal.ContactID,
		ExpectedCloseDate: formatTimePtr(deal.ExpectedCloseDate),
		Description:       deal.Description,
		CreatedAt:         formatTime(deal.CreatedAt),
	}

	if stage, ok := models.LookupStage(deal.Stage); ok {
		output.StageName = stage.Name
	}
	if c, ok := board.Contact(deal.ContactID); ok {
		output.ContactName = c.FullName()
	}

	return output
}

func findContactByName(contacts map[int64]models.Contact, name string) (models.Contact, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	var best models.Contact
	found := false
	for _, c := range contacts {
		if strings.ToLower(c.FullName()) != want {
			continue
		}
		// lowest id wins so repeated lookups agree
		if !found || c.ID < best.ID {
			best = c
			found = true
		}
	}
	return best, found
}
