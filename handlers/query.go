// ABOUTME: Deal query tool handler
// ABOUTME: Implements find_deals with search, stage, value, and contact filters
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type QueryHandlers struct {
	board *pipeline.Board
}

func NewQueryHandlers(board *pipeline.Board) *QueryHandlers {
	return &QueryHandlers{board: board}
}

type FindDealsInput struct {
	Query     string  `json:"query,omitempty" jsonschema:"Search text matched against title, contact name, and contact company"`
	Stage     string  `json:"stage,omitempty" jsonschema:"Only deals in this stage"`
	OpenOnly  bool    `json:"open_only,omitempty" jsonschema:"Exclude closed-won and closed-lost deals"`
	MinValue  float64 `json:"min_value,omitempty" jsonschema:"Only deals worth at least this much"`
	ContactID int64   `json:"contact_id,omitempty" jsonschema:"Only deals for this contact"`
	Limit     int     `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type FindDealsOutput struct {
	Deals []DealOutput `json:"deals"`
	Count int          `json:"count"`
}

func (h *QueryHandlers) FindDeals(ctx context.Context, req *mcp.CallToolRequest, input FindDealsInput) (*mcp.CallToolResult, FindDealsOutput, error) {
	if input.Limit == 0 {
		input.Limit = 10
	}
	if input.Stage != "" && !models.IsValidStage(input.Stage) {
		return nil, FindDealsOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", input.Stage, stageList())
	}

	if err := h.board.Load(ctx); err != nil {
		return nil, FindDealsOutput{}, err
	}

	deals := pipeline.FilterDeals(h.board.Deals(), h.board.Contacts(), input.Query)

	output := FindDealsOutput{Deals: []DealOutput{}}
	for _, d := range deals {
		if input.Stage != "" && d.Stage != input.Stage {
			continue
		}
		if input.OpenOnly && models.IsClosedStage(d.Stage) {
			continue
		}
		if d.Value < input.MinValue {
			continue
		}
		if input.ContactID != 0 && (d.ContactID == nil || *d.ContactID != input.ContactID) {
			continue
		}
		output.Deals = append(output.Deals, dealToOutput(h.board, d))
		if len(output.Deals) == input.Limit {
			break
		}
	}
	output.Count = len(output.Deals)

	return nil, output, nil
}
