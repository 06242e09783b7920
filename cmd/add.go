package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new note",
	Long: `Add a new note with a title and body.

The body can be provided in two ways:
1. Via --body flag: mod-notes add -t "Title" -b "Body"
2. Via stdin: echo "Body" | mod-notes add -t "Title"

Titles are limited to 200 characters and bodies to 5000. Surrounding
whitespace is trimmed from both.`,
	RunE: runAdd,
}

var (
	addTitle string
	addBody  string
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Note title (required)")
	addCmd.Flags().StringVarP(&addBody, "body", "b", "", "Note body")
	_ = addCmd.MarkFlagRequired("title")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addBody == "" {
		stat, _ := os.Stdin.Stat()
		isPiped := stat != nil && (stat.Mode()&os.ModeCharDevice) == 0
		if !isPiped {
			fmt.Println("Enter note body (press Ctrl+D when finished):")
		}
		addBody = readLines(os.Stdin)
	}

	note, err := svc.Notes.Create(cmd.Context(), addTitle, addBody)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	color.New(color.FgGreen, color.Bold).Printf("Note created successfully!\n")
	fmt.Printf("ID: %d\n", note.ID)
	fmt.Printf("Title: %s\n", note.Title)
	fmt.Printf("Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

func readLines(f *os.File) string {
	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return strings.Join(lines, "\n")
}
