package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/streed/mod-notes/internal/constants"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Long:  `List one page of notes, newest first, with their ID, title, and creation date.`,
	RunE:  runList,
}

var (
	listPage  int
	listLimit int
	listShort bool
	listJSON  bool
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listPage, "page", "p", constants.DefaultPage, "Page number, starting at 1")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", constants.DefaultListLimit, "Notes per page (1-100)")
	listCmd.Flags().BoolVarP(&listShort, "short", "s", false, "Show only ID and title")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the page as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	page, err := svc.Search.List(cmd.Context(), listPage, listLimit)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if listJSON {
		return printJSON(page)
	}

	if len(page.Items) == 0 {
		if page.Total == 0 {
			fmt.Println("No notes found.")
		} else {
			fmt.Printf("Page %d is empty (%d notes, %d pages).\n", page.Page, page.Total, page.Pages)
		}
		return nil
	}

	color.New(color.FgCyan, color.Bold).Printf("Page %d of %d (%d notes)\n\n", page.Page, page.Pages, page.Total)

	for _, note := range page.Items {
		if listShort {
			fmt.Printf("[%d] %s\n", note.ID, note.Title)
			continue
		}
		fmt.Printf("ID: %d\n", note.ID)
		fmt.Printf("Title: %s\n", note.Title)
		fmt.Printf("Created: %s\n", formatTime(note.CreatedAt))
		fmt.Printf("Preview: %s\n", preview(note.Body, constants.PreviewLength))
		fmt.Println(strings.Repeat("-", 60))
	}

	return nil
}

func preview(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}
