package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

var (
	searchLimit   int
	searchNewOnly bool
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the collection semantically",
	Long: `Searches indexed books by meaning, not keywords. The query is
embedded and matched against book descriptions, so "space opera with
politics" finds Dune without either word appearing in the query.

Books shown for the first time are marked as viewed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchNewOnly, "new", false, "only books you have not seen yet")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	opts := domain.SearchOptions{
		Limit:   searchLimit,
		NewOnly: searchNewOnly,
	}

	results, err := searchService.Search(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		book := results[i].Book

		cmd.Printf("  [%d] %s (%s)\n", i+1, formatTitle(&book), formatScore(results[i].Score))
		cmd.Printf("      Status: %s\n", formatStatus(book.Status))
		if len(results[i].SourceTitles) > 0 {
			cmd.Printf("      From: %s\n", strings.Join(results[i].SourceTitles, "; "))
		}
		if book.Summary != "" {
			cmd.Printf("      %s\n", book.Summary)
		}
		if book.PurchaseURL != "" {
			cmd.Printf("      %s\n", book.PurchaseURL)
		}
		cmd.Println()
	}

	return nil
}
