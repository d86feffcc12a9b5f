// ABOUTME: MCP resource handlers for exposing board data
// ABOUTME: Read-only JSON views of the pipeline, deals, and contacts via dealboard:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "dealboard://"

type ResourceHandlers struct {
	store db.ContactStore
	board *pipeline.Board
}

func NewResourceHandlers(store db.ContactStore, board *pipeline.Board) *ResourceHandlers {
	return &ResourceHandlers{store: store, board: board}
}

// Resources lists the fixed URIs the server advertises.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: resourceScheme + "pipeline", Name: "pipeline", Description: "Deals grouped by stage with totals", MIMEType: "application/json"},
		{URI: resourceScheme + "deals", Name: "deals", Description: "All deals, newest first", MIMEType: "application/json"},
		{URI: resourceScheme + "contacts", Name: "contacts", Description: "All contacts, newest first", MIMEType: "application/json"},
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	if err := h.board.Load(ctx); err != nil {
		return nil, err
	}

	switch parts[0] {
	case "pipeline":
		return jsonResource(uri, h.board.Columns(""))

	case "deals":
		if len(parts) == 1 {
			return jsonResource(uri, h.board.Deals())
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid deal ID: %w", err)
		}
		deal, ok := h.board.Deal(id)
		if !ok {
			return nil, &models.NotFoundError{Entity: "deal", ID: id}
		}
		return jsonResource(uri, dealToOutput(h.board, deal))

	case "contacts":
		if len(parts) == 1 {
			contacts, err := h.store.ListContacts(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch contacts: %w", err)
			}
			return jsonResource(uri, contacts)
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid contact ID: %w", err)
		}
		contact, err := h.store.GetContact(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch contact: %w", err)
		}
		return jsonResource(uri, contact)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
