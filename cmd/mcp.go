package cmd

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/streed/mod-notes/internal/logger"
	"github.com/streed/mod-notes/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for LLM integration",
	Long: `Start a Model Context Protocol (MCP) server on stdio so LLM clients can read
and search your notes.

Tools:
- add_note: Create a note
- list_notes: Page through notes, newest first
- search_notes: Keyword search with substring fallback
- vector_search_notes: Rank notes by embedding similarity
- get_note: Retrieve a note by ID

Resources:
- notes://recent: Most recently created notes

To use with an MCP client, register the command:
{
  "mcpServers": {
    "mod-notes": {
      "command": "mod-notes",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	logger.Info("Starting MCP server...")

	notesServer := mcp.NewNotesServer(appConfig, svc)

	logger.Info("MCP server ready. Listening on stdio...")
	if err := notesServer.ServeStdio(); err != nil && !errors.Is(err, io.EOF) {
		logger.Error("MCP server error: %v", err)
		return err
	}

	logger.Info("MCP server shutting down")
	return nil
}
