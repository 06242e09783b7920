package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/streed/mod-notes/internal/constants"
	"github.com/streed/mod-notes/internal/models"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search notes",
	Long: `Search notes by keyword or by vector similarity.

Keyword search uses the full-text index and falls back to a case-insensitive
substring match when the index is unavailable or finds nothing.

Vector search (--vector) embeds the query and every note, and returns the
most similar notes first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchLimit int
	useVector   bool
	searchShort bool
	searchJSON  bool
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", constants.DefaultSearchLimit, "Maximum number of results (1-100)")
	searchCmd.Flags().BoolVarP(&useVector, "vector", "v", false, "Use vector similarity search")
	searchCmd.Flags().BoolVarP(&searchShort, "short", "s", false, "Show only ID and title")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if searchLimit < 1 || searchLimit > constants.MaxLimit {
		return fmt.Errorf("--limit must be between 1 and %d", constants.MaxLimit)
	}

	if useVector {
		return runVectorSearch(cmd, query)
	}

	result, err := svc.Search.SearchNotes(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("text search failed: %w", err)
	}

	notes := result.Notes
	if len(notes) > searchLimit {
		notes = notes[:searchLimit]
	}
	if searchJSON {
		return printJSON(notes)
	}

	if len(notes) == 0 {
		fmt.Println("No matching notes found.")
		return nil
	}

	color.New(color.FgCyan, color.Bold).Printf("Found %d matching notes (%s search):\n\n", len(notes), result.Strategy)
	for _, note := range notes {
		printSearchHit(note, "")
	}
	return nil
}

func runVectorSearch(cmd *cobra.Command, query string) error {
	results, err := svc.Search.VectorSearch(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("vector search failed: %w", err)
	}
	if searchJSON {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No matching notes found.")
		return nil
	}

	color.New(color.FgCyan, color.Bold).Printf("Top %d most similar notes:\n\n", len(results))
	for i, r := range results {
		if !searchShort {
			fmt.Printf("Match %d:\n", i+1)
		}
		printSearchHit(r.Note, fmt.Sprintf("Similarity: %.4f", r.Similarity))
	}
	return nil
}

func printSearchHit(note *models.Note, extra string) {
	if searchShort {
		fmt.Printf("[%d] %s\n", note.ID, note.Title)
		return
	}
	fmt.Printf("ID: %d\n", note.ID)
	fmt.Printf("Title: %s\n", note.Title)
	if extra != "" {
		color.New(color.FgYellow).Println(extra)
	}
	fmt.Printf("Created: %s\n", formatTime(note.CreatedAt))
	fmt.Printf("Preview: %s\n", preview(note.Body, constants.SearchPreviewLength))
	fmt.Println(strings.Repeat("-", 60))
}
