package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	interrors "github.com/streed/mod-notes/internal/errors"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a note by ID",
	Long:  `Display the full content of a note by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var getJSON bool

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Print the note as JSON")
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: %s", interrors.ErrInvalidNoteID, args[0])
	}

	note, err := svc.Notes.GetByID(cmd.Context(), id)
	if errors.Is(err, interrors.ErrNoteNotFound) {
		return fmt.Errorf("note %d: %w", id, err)
	}
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}

	if getJSON {
		return printJSON(note)
	}

	bold := color.New(color.Bold)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("ID: %d\n", note.ID)
	bold.Printf("Title: %s\n", note.Title)
	fmt.Printf("Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated: %s\n", note.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
	fmt.Println(note.Body)
	fmt.Println()

	return nil
}
