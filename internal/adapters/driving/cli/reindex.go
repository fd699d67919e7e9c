package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index",
	Long: `Re-embeds every book with a description and rewrites its vector index
entry. Run this after switching embedding models or when the vector
store was lost; the relational store is the source of truth.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	cmd.Println("Rebuilding vector index...")

	report, err := libraryService.Reindex(context.Background())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Re-embedded %d book(s), skipped %d without a description.\n",
		report.Embedded, report.Skipped)
	return nil
}
