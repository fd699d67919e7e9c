// Command tbr tracks book recommendations from discussion threads.
// This is the composition root: it reads configuration, builds the
// driven adapters, wires the core services and hands control to the
// CLI.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/tbr-cli/internal/adapters/driven/catalog/googlebooks"
	configfile "github.com/custodia-labs/tbr-cli/internal/adapters/driven/config/file"
	embedollama "github.com/custodia-labs/tbr-cli/internal/adapters/driven/embedding/ollama"
	embedopenai "github.com/custodia-labs/tbr-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/tbr-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/tbr-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tbr-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tbr-cli/internal/adapters/driven/threads/reddit"
	"github.com/custodia-labs/tbr-cli/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/tbr-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
	"github.com/custodia-labs/tbr-cli/internal/core/services"
	"github.com/custodia-labs/tbr-cli/internal/logger"
)

// version is overridden at build time via ldflags.
var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := sqlite.NewStore(config.GetString("data.dir"))
	if err != nil {
		return fmt.Errorf("open library store: %w", err)
	}
	defer store.Close() //nolint:errcheck // best-effort close on exit

	embedder, err := buildEmbedder(config)
	if err != nil {
		return err
	}

	vector := buildVectorIndex(config, embedder.Dimensions())

	extractor := ollama.NewExtractor(ollama.Config{
		BaseURL: config.GetString("llm.base_url"),
		Model:   config.GetString("llm.model"),
	})

	catalog := googlebooks.NewClient(googlebooks.Config{
		APIKey: config.GetString("catalog.api_key"),
	})

	resolver := reddit.NewResolver(reddit.Config{
		UserAgent: config.GetString("reddit.user_agent"),
	})

	books := store.BookStore()
	sources := store.SourceStore()
	mentions := store.MentionStore()
	notifier := services.NewNotifier(os.Stderr)

	cli.SetServices(cli.Services{
		Ingestor:       services.NewIngestService(books, sources, mentions, vector, embedder, catalog, extractor, notifier),
		Search:         services.NewSearchService(books, mentions, vector, embedder),
		Library:        services.NewLibraryService(books, sources, mentions, vector, embedder),
		ThreadResolver: resolver,
		Config:         config,
		Version:        version,
	})

	return cli.Execute()
}

// buildEmbedder picks the embedding provider from configuration.
// Defaults to a local Ollama runtime.
func buildEmbedder(config driven.ConfigStore) (driven.EmbeddingService, error) {
	switch config.GetString("embedding.provider") {
	case "openai":
		service, err := embedopenai.NewEmbeddingService(embedopenai.Config{
			APIKey:     config.GetString("embedding.api_key"),
			Model:      config.GetString("embedding.model"),
			Dimensions: config.GetInt("embedding.dimensions"),
		})
		if err != nil {
			return nil, fmt.Errorf("configure OpenAI embeddings: %w", err)
		}
		return service, nil
	default:
		return embedollama.NewEmbeddingService(embedollama.Config{
			BaseURL:    config.GetString("embedding.base_url"),
			Model:      config.GetString("embedding.model"),
			Dimensions: config.GetInt("embedding.dimensions"),
		}), nil
	}
}

// buildVectorIndex picks the vector store from configuration. A Qdrant
// that cannot be reached does not abort startup: the relational store
// stays usable and search reports the index as unavailable.
func buildVectorIndex(config driven.ConfigStore, dimensions int) driven.VectorIndex {
	if config.GetString("vector.provider") == "memory" {
		return memory.NewVectorIndex()
	}

	url := config.GetString("vector.url")
	if url == "" {
		url = "http://localhost:6333"
	}

	index, err := qdrant.NewIndex(qdrant.Config{
		URL:        url,
		APIKey:     config.GetString("vector.api_key"),
		Collection: config.GetString("vector.collection"),
		Dimensions: dimensions,
	})
	if err != nil {
		logger.Warn("vector index unavailable: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: vector index unavailable (%v); search is disabled until it is back.\n", err)
		return nil
	}
	return index
}
