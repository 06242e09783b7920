package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streed/mod-notes/internal/config"
	"github.com/streed/mod-notes/internal/database"
	"github.com/streed/mod-notes/internal/embeddings"
	"github.com/streed/mod-notes/internal/models"
	"github.com/streed/mod-notes/internal/services"
)

func newTestNotesServer(t *testing.T) *NotesServer {
	t.Helper()
	tempDir := t.TempDir()
	cfg := &config.Config{
		DataDirectory:     tempDir,
		DatabasePath:      filepath.Join(tempDir, "mcp.db"),
		EmbeddingProvider: embeddings.ProviderHash,
		VectorDimensions:  64,
	}

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	embedder, err := embeddings.New(cfg)
	require.NoError(t, err)

	repo := models.NewNoteRepository(db.Conn())
	return NewNotesServer(cfg, services.NewServices(cfg, repo, embedder))
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestAddAndGetNote(t *testing.T) {
	s := newTestNotesServer(t)
	ctx := context.Background()

	result, err := s.handleAddNote(ctx, callTool("add_note", map[string]interface{}{
		"title": "Standup",
		"body":  "Discussed the release",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "Created note 1: Standup", resultText(t, result))

	result, err = s.handleGetNote(ctx, callTool("get_note", map[string]interface{}{"id": float64(1)}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Title: Standup")
	assert.Contains(t, text, "Discussed the release")
}

func TestAddNoteInvalid(t *testing.T) {
	s := newTestNotesServer(t)

	result, err := s.handleAddNote(context.Background(), callTool("add_note", map[string]interface{}{
		"title": "   ",
		"body":  "body",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	_, err = s.handleAddNote(context.Background(), callTool("add_note", map[string]interface{}{"title": "only"}))
	assert.Error(t, err)
}

func TestGetNoteNotFound(t *testing.T) {
	s := newTestNotesServer(t)

	result, err := s.handleGetNote(context.Background(), callTool("get_note", map[string]interface{}{"id": float64(77)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")
}

func TestListNotes(t *testing.T) {
	s := newTestNotesServer(t)
	ctx := context.Background()

	result, err := s.handleListNotes(ctx, callTool("list_notes", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No notes on page 1")

	for _, title := range []string{"First", "Second", "Third"} {
		_, err := s.services.Notes.Create(ctx, title, "body")
		require.NoError(t, err)
	}

	result, err = s.handleListNotes(ctx, callTool("list_notes", map[string]interface{}{"limit": float64(2)}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Page 1 of 2 (3 notes in total)")
	assert.Contains(t, text, "Third")
	assert.NotContains(t, text, "First")

	result, err = s.handleListNotes(ctx, callTool("list_notes", map[string]interface{}{"limit": float64(500)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSearchTools(t *testing.T) {
	s := newTestNotesServer(t)
	ctx := context.Background()
	for _, n := range [][2]string{
		{"Machine learning", "machine learning models"},
		{"Tomato", "tomato soup recipe"},
	} {
		_, err := s.services.Notes.Create(ctx, n[0], n[1])
		require.NoError(t, err)
	}

	result, err := s.handleSearchNotes(ctx, callTool("search_notes", map[string]interface{}{"query": "soup"}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 notes")
	assert.Contains(t, text, "Tomato")

	result, err = s.handleSearchNotes(ctx, callTool("search_notes", map[string]interface{}{"query": "zzz"}))
	require.NoError(t, err)
	assert.Equal(t, "No notes found matching your query.", resultText(t, result))

	result, err = s.handleVectorSearch(ctx, callTool("vector_search_notes", map[string]interface{}{
		"query": "machine learning",
		"limit": float64(1),
	}))
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, "Top 1 notes")
	assert.Contains(t, text, "Machine learning")
	assert.NotContains(t, text, "Tomato")

	result, err = s.handleVectorSearch(ctx, callTool("vector_search_notes", map[string]interface{}{
		"query": "machine",
		"limit": float64(0),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRecentNotesResource(t *testing.T) {
	s := newTestNotesServer(t)
	ctx := context.Background()
	_, err := s.services.Notes.Create(ctx, "Recent", "just now")
	require.NoError(t, err)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "notes://recent"
	contents, err := s.handleRecentNotes(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "notes://recent", text.URI)
	assert.Contains(t, text.Text, "[ID: 1] Recent")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "héll...", truncateString("héllo", 4))
}
