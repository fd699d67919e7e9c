package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

var removeYes bool

var removeSourceCmd = &cobra.Command{
	Use:   "remove-source [source-id]",
	Short: "Remove a source and its exclusive books",
	Long: `Removes an ingested source. Books mentioned only in that source are
deleted from the collection; books mentioned elsewhere keep their other
links. A preview is shown and confirmation required unless --yes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemoveSource,
}

func init() {
	removeSourceCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(removeSourceCmd)
}

func runRemoveSource(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	sourceID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid source ID %q", args[0])
	}

	ctx := context.Background()

	plan, err := libraryService.PlanRemoval(ctx, sourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("source %d not found", sourceID)
		}
		return fmt.Errorf("plan removal: %w", err)
	}

	cmd.Printf("Removing source: %s\n", plan.Source.Title)
	if len(plan.Delete) > 0 {
		cmd.Printf("\nThese books are mentioned nowhere else and will be deleted:\n")
		for i := range plan.Delete {
			cmd.Printf("  - %s\n", formatTitle(&plan.Delete[i]))
		}
	}
	if len(plan.Keep) > 0 {
		cmd.Printf("\nThese books are mentioned elsewhere and will be kept:\n")
		for i := range plan.Keep {
			cmd.Printf("  - %s\n", formatTitle(&plan.Keep[i]))
		}
	}
	cmd.Println()

	if !removeYes && !confirm(cmd) {
		cmd.Println("Aborted.")
		return nil
	}

	report, err := libraryService.RemoveSource(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("remove source: %w", err)
	}

	cmd.Printf("Removed source %d: %d book(s) deleted, %d kept, %d mention(s) cleared.\n",
		sourceID, report.BooksDeleted, report.BooksKept, report.MentionsRemoved)
	return nil
}

// confirm prompts on stdin and accepts y/yes.
func confirm(cmd *cobra.Command) bool {
	cmd.Print("Continue? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n') //nolint:errcheck // prompt, empty on error
	answer := strings.ToLower(strings.TrimSpace(input))
	return answer == "y" || answer == "yes"
}
