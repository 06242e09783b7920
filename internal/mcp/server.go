package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/streed/mod-notes/internal/config"
	"github.com/streed/mod-notes/internal/constants"
	interrors "github.com/streed/mod-notes/internal/errors"
	"github.com/streed/mod-notes/internal/logger"
	"github.com/streed/mod-notes/internal/services"
)

const timeLayout = "2006-01-02 15:04:05"

type NotesServer struct {
	cfg       *config.Config
	services  *services.Services
	mcpServer *server.MCPServer
}

func NewNotesServer(cfg *config.Config, svc *services.Services) *NotesServer {
	ns := &NotesServer{
		cfg:      cfg,
		services: svc,
	}

	ns.mcpServer = server.NewMCPServer(
		"mod-notes",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	ns.registerTools()
	ns.registerResources()

	return ns
}

// ServeStdio blocks serving MCP over stdin/stdout
func (s *NotesServer) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *NotesServer) registerTools() {
	addNoteTool := mcp.NewTool("add_note",
		mcp.WithDescription("Add a new note"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the note (max 200 characters)"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("The body of the note (max 5000 characters)"),
		),
	)
	s.mcpServer.AddTool(addNoteTool, s.handleAddNote)

	listNotesTool := mcp.NewTool("list_notes",
		mcp.WithDescription("List notes newest first, one page at a time"),
		mcp.WithNumber("page",
			mcp.Description("Page number, starting at 1 (default: 1)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Notes per page, 1 to 100 (default: 10)"),
		),
	)
	s.mcpServer.AddTool(listNotesTool, s.handleListNotes)

	searchTool := mcp.NewTool("search_notes",
		mcp.WithDescription("Keyword search over note titles and bodies. Uses the full-text index when it has matches, otherwise a case-insensitive substring match."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchNotes)

	vectorTool := mcp.NewTool("vector_search_notes",
		mcp.WithDescription("Rank notes by embedding similarity to the query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results, 1 to 100 (default: 10)"),
		),
	)
	s.mcpServer.AddTool(vectorTool, s.handleVectorSearch)

	getNoteTool := mcp.NewTool("get_note",
		mcp.WithDescription("Get a specific note by ID"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The ID of the note to retrieve"),
		),
	)
	s.mcpServer.AddTool(getNoteTool, s.handleGetNote)
}

func (s *NotesServer) registerResources() {
	recentResource := mcp.NewResource("notes://recent",
		"Recent Notes",
		mcp.WithResourceDescription("The most recently created notes"),
		mcp.WithMIMEType("text/plain"),
	)
	s.mcpServer.AddResource(recentResource, s.handleRecentNotes)
}

func (s *NotesServer) handleAddNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: add_note")

	title, err := request.RequireString("title")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'title': %w", err)
	}
	body, err := request.RequireString("body")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'body': %w", err)
	}

	note, err := s.services.Notes.Create(ctx, title, body)
	if err != nil {
		if isInvalidInput(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created note %d: %s", note.ID, note.Title)), nil
}

func (s *NotesServer) handleListNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: list_notes")

	page := request.GetInt("page", constants.DefaultPage)
	limit := request.GetInt("limit", constants.DefaultListLimit)

	result, err := s.services.Search.List(ctx, page, limit)
	if err != nil {
		if isInvalidInput(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	if len(result.Items) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No notes on page %d (%d notes in total).", result.Page, result.Total)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Page %d of %d (%d notes in total):\n\n", result.Page, result.Pages, result.Total)
	for i, note := range result.Items {
		fmt.Fprintf(&b, "%d. [ID: %d] %s\n   Created: %s\n   %s\n\n",
			(result.Page-1)*result.Limit+i+1, note.ID, note.Title,
			note.CreatedAt.Format(timeLayout),
			truncateString(note.Body, constants.PreviewLength))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *NotesServer) handleSearchNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: search_notes")

	query, err := request.RequireString("query")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'query': %w", err)
	}

	result, err := s.services.Search.SearchNotes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if len(result.Notes) == 0 {
		return mcp.NewToolResultText("No notes found matching your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d notes (%s search):\n\n", len(result.Notes), result.Strategy)
	for i, note := range result.Notes {
		fmt.Fprintf(&b, "%d. [ID: %d] %s\n   %s\n\n",
			i+1, note.ID, note.Title,
			truncateString(note.Body, constants.PreviewLength))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *NotesServer) handleVectorSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: vector_search_notes")

	query, err := request.RequireString("query")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'query': %w", err)
	}
	limit := request.GetInt("limit", constants.DefaultSearchLimit)
	if limit < 1 || limit > constants.MaxLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", constants.MaxLimit)), nil
	}

	results, err := s.services.Search.VectorSearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No notes found matching your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d notes by similarity:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "%d. [ID: %d] %s (similarity %.4f)\n   %s\n\n",
			i+1, r.ID, r.Title, r.Similarity,
			truncateString(r.Body, constants.PreviewLength))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *NotesServer) handleGetNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: get_note")

	id, err := request.RequireInt("id")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'id': %w", err)
	}

	note, err := s.services.Notes.GetByID(ctx, id)
	if errors.Is(err, interrors.ErrNoteNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("note %d not found", id)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	result := fmt.Sprintf("Note ID: %d\nTitle: %s\nCreated: %s\nUpdated: %s\n\n%s",
		note.ID, note.Title,
		note.CreatedAt.Format(timeLayout),
		note.UpdatedAt.Format(timeLayout),
		note.Body)

	return mcp.NewToolResultText(result), nil
}

func (s *NotesServer) handleRecentNotes(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: notes://recent")

	page, err := s.services.Search.List(ctx, constants.DefaultPage, constants.DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent notes: %w", err)
	}

	var b strings.Builder
	b.WriteString("Recent Notes:\n\n")
	for i, note := range page.Items {
		fmt.Fprintf(&b, "%d. [ID: %d] %s\n   Created: %s\n   %s\n\n",
			i+1, note.ID, note.Title,
			note.CreatedAt.Format(timeLayout),
			truncateString(note.Body, constants.SearchPreviewLength))
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     b.String(),
		},
	}, nil
}

func isInvalidInput(err error) bool {
	for _, target := range []error{
		interrors.ErrEmptyTitle,
		interrors.ErrEmptyContent,
		interrors.ErrTitleTooLong,
		interrors.ErrBodyTooLong,
		interrors.ErrInvalidPage,
		interrors.ErrInvalidLimit,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
