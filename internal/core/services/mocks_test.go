package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

// --- Mock implementations shared across the service tests ---

// mockExtractor implements driven.MentionExtractor with canned
// responses keyed by a substring of the input text.
type mockExtractor struct {
	responses  map[string]string // substring of input -> raw response
	fallback   string
	extractErr error

	summary      string
	summarizeErr error
}

func (m *mockExtractor) Extract(_ context.Context, text string) (string, error) {
	if m.extractErr != nil {
		return "", m.extractErr
	}
	for needle, response := range m.responses {
		if strings.Contains(text, needle) {
			return response, nil
		}
	}
	return m.fallback, nil
}

func (m *mockExtractor) Summarize(_ context.Context, text string) (string, error) {
	if m.summarizeErr != nil {
		return "", m.summarizeErr
	}
	if m.summary != "" {
		return m.summary, nil
	}
	return text, nil
}

func (m *mockExtractor) ModelName() string { return "mock-llm" }
func (m *mockExtractor) Close() error      { return nil }

// mockEmbedder implements driven.EmbeddingService, deriving a cheap
// deterministic vector from the input length so distinct texts embed
// differently.
type mockEmbedder struct {
	embedErr error
	calls    int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.calls++
	return []float32{float32(len(text)%7 + 1), 1, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = embedding
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockCatalog implements driven.CatalogClient with canned records
// keyed by lowercase title.
type mockCatalog struct {
	records   map[string]*domain.CatalogRecord
	lookupErr error
	calls     int
}

func (m *mockCatalog) Lookup(_ context.Context, title, _ string) (*domain.CatalogRecord, error) {
	m.calls++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.records[strings.ToLower(title)], nil
}

// candidateJSON renders candidates the way the extraction LLM does.
func candidateJSON(candidates ...domain.Candidate) string {
	entries := make([]string, len(candidates))
	for i, c := range candidates {
		entries[i] = fmt.Sprintf(`{"title": %q, "author": %q}`, c.Title, c.Author)
	}
	return "[" + strings.Join(entries, ", ") + "]"
}
