// ABOUTME: MCP server subcommand
// ABOUTME: Registers the board, entity, viz tools plus resources and prompts on stdio
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/handlers"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer builds the server with every tool, resource, and prompt registered.
func NewMCPServer(store db.RecordStore, board *pipeline.Board, version string) *mcp.Server {
	pipelineHandlers := handlers.NewPipelineHandlers(board)
	dealHandlers := handlers.NewDealHandlers(board)
	queryHandlers := handlers.NewQueryHandlers(board)
	contactHandlers := handlers.NewContactHandlers(store, board)
	taskHandlers := handlers.NewTaskHandlers(store)
	activityHandlers := handlers.NewActivityHandlers(store)
	quoteHandlers := handlers.NewQuoteHandlers(store)
	vizHandlers := handlers.NewVizHandlers(store)
	resourceHandlers := handlers.NewResourceHandlers(store, board)
	promptHandlers := handlers.NewPromptHandlers(store, board)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealboard",
		Version: version,
	}, nil)

	// Board
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_pipeline",
		Description: "Show deals grouped into pipeline stages with counts and value totals, optionally filtered by search text",
	}, pipelineHandlers.GetPipeline)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal",
		Description: "Move a deal to another pipeline stage, exactly as dragging its card to that column would",
	}, pipelineHandlers.MoveDeal)

	// Deals
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a new deal, optionally linked to a contact by id or name",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deal",
		Description: "Update an existing deal; only the fields given are changed",
	}, dealHandlers.UpdateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_deal",
		Description: "Delete a deal",
	}, dealHandlers.DeleteDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_deals",
		Description: "Search deals by text, stage, minimum value, or contact",
	}, queryHandlers.FindDeals)

	// Contacts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search for contacts by name, email, or company",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact. Deals that reference it keep the reference",
	}, contactHandlers.DeleteContact)

	// Tasks
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_task",
		Description: "Add a task with a due date, optionally tied to a contact or deal",
		InputSchema: handlers.AddTaskSchema(),
	}, taskHandlers.AddTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks by due date, optionally filtered by status, deal, or search text",
		InputSchema: handlers.ListTasksSchema(),
	}, taskHandlers.ListTasks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_task",
		Description: "Mark a task completed, or reopen a completed task",
	}, taskHandlers.ToggleTask)

	// Activities
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a call, email, meeting, or note and update the contact's last activity",
		InputSchema: handlers.LogActivitySchema(),
	}, activityHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_activities",
		Description: "List recent activities, optionally filtered by contact, deal, type, or search text",
		InputSchema: handlers.ListActivitiesSchema(),
	}, activityHandlers.ListActivities)

	// Quotes
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_quote",
		Description: "Create a quote for a deal",
		InputSchema: handlers.CreateQuoteSchema(),
	}, quoteHandlers.CreateQuote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_quotes",
		Description: "List quotes, optionally filtered by deal, status, or search text",
		InputSchema: handlers.ListQuotesSchema(),
	}, quoteHandlers.ListQuotes)

	// Visualization
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz graph of the pipeline or of contacts and their deals",
	}, vizHandlers.GenerateGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Pipeline, task, and activity statistics in one call",
	}, vizHandlers.GetDashboard)

	for _, r := range resourceHandlers.Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "dealboard://deals/{id}",
		Name:        "deal",
		Description: "One deal by id",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "dealboard://contacts/{id}",
		Name:        "contact",
		Description: "One contact by id",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}

// MCPCommand starts the MCP server on stdio. Logs go to the logger, which
// must not write to stdout.
func MCPCommand(ctx context.Context, store db.RecordStore, board *pipeline.Board, logger *log.Logger, version string) error {
	logger.Info("starting MCP server", "version", version)

	if err := board.Load(ctx); err != nil {
		return err
	}

	server := NewMCPServer(store, board, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
