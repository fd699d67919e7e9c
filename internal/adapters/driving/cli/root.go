// Package cli implements the tbr command line interface on cobra.
// Services are injected by the composition root via SetServices;
// commands fail with a clear error when run unwired.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driving"
	"github.com/custodia-labs/tbr-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services. Nil until SetServices is called.
var (
	ingestService  driving.Ingestor
	searchService  driving.SearchService
	libraryService driving.Library
	threadResolver driven.ThreadResolver
	configStore    driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "tbr",
	Short: "Track book recommendations from discussion threads",
	Long: `tbr ingests discussion threads, extracts book recommendations with
an LLM, enriches them from a bibliographic catalog and makes the
collection semantically searchable.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the CLI needs from the composition root.
type Services struct {
	Ingestor       driving.Ingestor
	Search         driving.SearchService
	Library        driving.Library
	ThreadResolver driven.ThreadResolver
	Config         driven.ConfigStore
	Version        string
}

// SetServices wires the injected services into the command tree.
func SetServices(s Services) {
	ingestService = s.Ingestor
	searchService = s.Search
	libraryService = s.Library
	threadResolver = s.ThreadResolver
	configStore = s.Config
	if s.Version != "" {
		version = s.Version
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
