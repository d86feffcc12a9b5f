// ABOUTME: Pipeline board MCP tool handlers
// ABOUTME: Implements get_pipeline and move_deal over the grouped board
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PipelineHandlers struct {
	board *pipeline.Board
}

func NewPipelineHandlers(board *pipeline.Board) *PipelineHandlers {
	return &PipelineHandlers{board: board}
}

type GetPipelineInput struct {
	Search string `json:"search,omitempty" jsonschema:"Only include deals whose title, contact name, or contact company contains this text"`
}

type StageOutput struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Color      string       `json:"color"`
	Count      int          `json:"count"`
	TotalValue float64      `json:"total_value"`
	Deals      []DealOutput `json:"deals"`
}

type PipelineOutput struct {
	Stages    []StageOutput    `json:"stages"`
	Summary   pipeline.Summary `json:"summary"`
	Unmatched int              `json:"unmatched,omitempty"`
}

// GetPipeline reloads the board so changes made by other processes show up.
func (h *PipelineHandlers) GetPipeline(ctx context.Context, request *mcp.CallToolRequest, input GetPipelineInput) (*mcp.CallToolResult, PipelineOutput, error) {
	if err := h.board.Load(ctx); err != nil {
		return nil, PipelineOutput{}, err
	}

	contacts := h.board.Contacts()
	deals := pipeline.FilterDeals(h.board.Deals(), contacts, input.Search)
	groups, unmatched := pipeline.Partition(h.board.Stages(), deals)

	output := PipelineOutput{
		Stages:    make([]StageOutput, 0, len(groups)),
		Summary:   pipeline.Summarize(groups),
		Unmatched: len(unmatched),
	}
	for _, g := range groups {
		stage := StageOutput{
			ID:         g.Stage.ID,
			Name:       g.Stage.Name,
			Color:      g.Stage.Color,
			Count:      g.Count,
			TotalValue: g.TotalValue,
			Deals:      make([]DealOutput, 0, len(g.Deals)),
		}
		for _, d := range g.Deals {
			stage.Deals = append(stage.Deals, dealToOutput(h.board, d))
		}
		output.Stages = append(output.Stages, stage)
	}

	return nil, output, nil
}

type MoveDealInput struct {
	ID    int64  `json:"id" jsonschema:"Deal ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage: lead, qualified, proposal, negotiation, closed-won, closed-lost"`
}

type MoveDealOutput struct {
	Outcome string     `json:"outcome"`
	From    string     `json:"from"`
	To      string     `json:"to"`
	Deal    DealOutput `json:"deal"`
}

// MoveDeal runs a move the same way a drag on the board would: pick the deal
// up, drop it on the target column.
func (h *PipelineHandlers) MoveDeal(ctx context.Context, request *mcp.CallToolRequest, input MoveDealInput) (*mcp.CallToolResult, MoveDealOutput, error) {
	if input.ID == 0 {
		return nil, MoveDealOutput{}, fmt.Errorf("id is required")
	}
	if !models.IsValidStage(input.Stage) {
		return nil, MoveDealOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", input.Stage, stageList())
	}

	deal, ok := h.board.Deal(input.ID)
	if !ok {
		if err := h.board.Load(ctx); err != nil {
			return nil, MoveDealOutput{}, err
		}
		if deal, ok = h.board.Deal(input.ID); !ok {
			return nil, MoveDealOutput{}, &models.NotFoundError{Entity: "deal", ID: input.ID}
		}
	}

	controller := h.board.NewController()
	if err := controller.Begin(deal); err != nil {
		return nil, MoveDealOutput{}, err
	}
	result, err := controller.Drop(ctx, input.Stage)
	if err != nil {
		return nil, MoveDealOutput{}, err
	}

	output := MoveDealOutput{
		Outcome: result.Outcome.String(),
		From:    result.From,
		To:      result.To,
		Deal:    dealToOutput(h.board, deal),
	}
	if result.Deal != nil {
		output.Deal = dealToOutput(h.board, *result.Deal)
	}
	return nil, output, nil
}
