package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List ingested sources",
	Long:  `Lists every ingested thread with the number of books linked to it.`,
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	summaries, err := libraryService.ListSources(context.Background())
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	if len(summaries) == 0 {
		cmd.Println("No sources ingested yet.")
		return nil
	}

	for _, summary := range summaries {
		cmd.Printf("  [%d] %s\n", summary.Source.ID, summary.Source.Title)
		cmd.Printf("      %d book(s)", summary.BookCount)
		if summary.Source.URL != "" {
			cmd.Printf("  %s", summary.Source.URL)
		}
		cmd.Println()
	}

	return nil
}
