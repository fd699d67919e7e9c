package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driving"
)

var (
	listStatus string
	listFilter string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed books",
	Long: `Lists books in the collection, newest first. Filter by reading
status or by a title/author substring.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by reading status")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "title/author substring filter")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum number of books (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	opts := driving.ListOptions{
		Filter: listFilter,
		Limit:  listLimit,
	}
	if listStatus != "" {
		status, err := domain.ParseStatus(listStatus)
		if err != nil {
			return err
		}
		opts.Status = status
	}

	books, err := libraryService.ListBooks(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if len(books) == 0 {
		cmd.Println("No books found.")
		return nil
	}

	for i := range books {
		book := &books[i]
		cmd.Printf("  [%d] %s\n", book.ID, formatTitle(book))
		cmd.Printf("      Status: %s", formatStatus(book.Status))
		if book.ISBN != "" {
			cmd.Printf("  ISBN: %s", book.ISBN)
		}
		cmd.Println()
	}
	cmd.Println()
	cmd.Printf("%d book(s)\n", len(books))

	return nil
}
