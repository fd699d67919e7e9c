package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [book-id] [status]",
	Short: "Show or change a book's reading status",
	Long: `With only a book ID, shows the book and its current status.
With a status argument, updates it. Valid statuses:
new, viewed, interested, reading, finished, dropped, deleted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	bookID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book ID %q", args[0])
	}

	ctx := context.Background()

	if len(args) == 1 {
		book, err := libraryService.GetBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("book %d not found", bookID)
			}
			return fmt.Errorf("get book: %w", err)
		}

		cmd.Printf("%s\n", formatTitle(book))
		cmd.Printf("Status: %s\n", formatStatus(book.Status))
		cmd.Println()
		cmd.Print("Valid statuses:")
		for _, status := range domain.AllStatuses {
			cmd.Printf(" %s", status)
		}
		cmd.Println()
		return nil
	}

	status, err := domain.ParseStatus(args[1])
	if err != nil {
		return err
	}

	updated, err := libraryService.SetStatus(ctx, bookID, status)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if !updated {
		return fmt.Errorf("book %d not found", bookID)
	}

	cmd.Printf("Book %d marked as %s.\n", bookID, formatStatus(status))
	return nil
}
