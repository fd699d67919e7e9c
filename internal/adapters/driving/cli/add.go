package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driving"
)

var addForce bool

var addCmd = &cobra.Command{
	Use:   "add [url-or-file]",
	Short: "Ingest a discussion thread",
	Long: `Fetches a Reddit thread (or loads a saved thread JSON file), extracts
book recommendations from every comment, enriches them from the
bibliographic catalog and indexes them for semantic search.

Re-adding a thread is idempotent; use --force to re-process it anyway.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVar(&addForce, "force", false, "re-process even if the thread was already ingested")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil || threadResolver == nil {
		return errors.New("ingest service not configured")
	}

	ref := args[0]
	ctx := context.Background()

	if !addForce {
		if externalID := threadResolver.ExternalID(ref); externalID != "" {
			known, err := sourceExists(ctx, externalID)
			if err != nil {
				return fmt.Errorf("check existing sources: %w", err)
			}
			if known {
				cmd.Printf("Thread %s is already ingested. Use --force to re-process.\n", externalID)
				return nil
			}
		}
	}

	cmd.Println("Fetching thread...")
	thread, err := threadResolver.Resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("resolve thread: %w", err)
	}

	cmd.Printf("Ingesting %q (%d comments)...\n", thread.Title, len(thread.Comments))

	opts := driving.IngestOptions{
		Progress: func(processed, total int, found []string) {
			if len(found) > 0 {
				cmd.Printf("  [%d/%d] %s\n", processed, total, strings.Join(found, ", "))
			}
		},
	}

	report, err := ingestService.IngestThread(ctx, thread, opts)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) && report != nil {
			cmd.Println()
			cmd.Println("Catalog quota exhausted; ingestion stopped early.")
			printIngestReport(cmd, report)
			cmd.Println("Run the command again later to resume.")
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Println()
	printIngestReport(cmd, report)
	return nil
}

func printIngestReport(cmd *cobra.Command, report *driving.IngestReport) {
	cmd.Printf("Mentions found:  %d\n", report.Mentions)
	cmd.Printf("Books added:     %d\n", report.Added)
	cmd.Printf("Books linked:    %d\n", report.Linked)
	if report.Unsearchable > 0 {
		cmd.Printf("Unsearchable:    %d (no catalog description)\n", report.Unsearchable)
	}
}

// sourceExists reports whether a source with the external ID is already
// in the library.
func sourceExists(ctx context.Context, externalID string) (bool, error) {
	if libraryService == nil {
		return false, nil
	}
	summaries, err := libraryService.ListSources(ctx)
	if err != nil {
		return false, err
	}
	for _, summary := range summaries {
		if summary.Source.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}
