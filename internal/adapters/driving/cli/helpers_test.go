package cli

import (
	"context"
	"errors"
	"sort"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driving"
)

// setupTestServices wires mock services into the command tree and
// returns a cleanup that restores the previous wiring and flag state.
func setupTestServices() func() {
	oldIngest := ingestService
	oldSearch := searchService
	oldLibrary := libraryService
	oldResolver := threadResolver
	oldConfig := configStore

	ingestService = &mockIngestor{
		report: &driving.IngestReport{SourceID: 1, Mentions: 2, Added: 1, Linked: 1},
	}
	searchService = &mockSearcher{
		results: []domain.SearchResult{
			{
				Book: domain.Book{
					ID:      1,
					Title:   "Dune",
					Author:  "Frank Herbert",
					Summary: "Desert planet politics.",
					Status:  domain.StatusViewed,
				},
				Score:        0.91,
				SourceTitles: []string{"Best sci-fi?"},
			},
		},
	}
	libraryService = newMockLibrary()
	threadResolver = &mockResolver{
		thread: &domain.Thread{
			ID:    "abc123",
			Title: "Best sci-fi?",
			Kind:  "reddit",
			Comments: []domain.Comment{
				{ID: "c1", Body: "Dune by Frank Herbert"},
			},
		},
		externalID: "abc123",
	}
	configStore = newMockConfig()

	return func() {
		ingestService = oldIngest
		searchService = oldSearch
		libraryService = oldLibrary
		threadResolver = oldResolver
		configStore = oldConfig
		rootCmd.SetArgs(nil)
		addForce = false
		searchLimit = 5
		searchNewOnly = false
		searchJSON = false
		listStatus = ""
		listFilter = ""
		listLimit = 0
		removeYes = false
	}
}

// ==================== Ingestor mock ====================

type mockIngestor struct {
	report     *driving.IngestReport
	err        error
	lastThread *domain.Thread
}

func (m *mockIngestor) IngestThread(_ context.Context, thread *domain.Thread, opts driving.IngestOptions) (*driving.IngestReport, error) {
	m.lastThread = thread
	if opts.Progress != nil {
		for i := range thread.Comments {
			opts.Progress(i+1, len(thread.Comments), []string{"Dune by Frank Herbert"})
		}
	}
	if m.err != nil {
		return m.report, m.err
	}
	return m.report, nil
}

// ==================== Search mock ====================

type mockSearcher struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearcher) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// ==================== Library mock ====================

type mockLibrary struct {
	books    []domain.Book
	sources  []driving.SourceSummary
	plan     *driving.RemovalPlan
	removal  *driving.RemovalReport
	reindex  *driving.ReindexReport
	lastOpts driving.ListOptions
	removed  []int64
	err      error
}

func newMockLibrary() *mockLibrary {
	return &mockLibrary{
		books: []domain.Book{
			{ID: 1, Title: "Dune", Author: "Frank Herbert", Status: domain.StatusNew, ISBN: "9780441013593"},
			{ID: 2, Title: "Hyperion", Author: "Dan Simmons", Status: domain.StatusViewed},
		},
		sources: []driving.SourceSummary{
			{
				Source:    domain.Source{ID: 1, Kind: "reddit", ExternalID: "abc123", Title: "Best sci-fi?", URL: "https://reddit.com/r/printSF/comments/abc123/"},
				BookCount: 2,
			},
		},
		plan: &driving.RemovalPlan{
			Source: domain.Source{ID: 1, Title: "Best sci-fi?"},
			Delete: []domain.Book{{ID: 1, Title: "Dune", Author: "Frank Herbert"}},
			Keep:   []domain.Book{{ID: 2, Title: "Hyperion", Author: "Dan Simmons"}},
		},
		removal: &driving.RemovalReport{MentionsRemoved: 2, BooksDeleted: 1, BooksKept: 1},
		reindex: &driving.ReindexReport{Embedded: 2, Skipped: 1},
	}
}

func (m *mockLibrary) ListBooks(_ context.Context, opts driving.ListOptions) ([]domain.Book, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.books, nil
}

func (m *mockLibrary) GetBook(_ context.Context, id int64) (*domain.Book, error) {
	for i := range m.books {
		if m.books[i].ID == id {
			return &m.books[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibrary) SetStatus(_ context.Context, id int64, status domain.Status) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for i := range m.books {
		if m.books[i].ID == id {
			m.books[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLibrary) ListSources(_ context.Context) ([]driving.SourceSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sources, nil
}

func (m *mockLibrary) PlanRemoval(_ context.Context, sourceID int64) (*driving.RemovalPlan, error) {
	if m.plan == nil || m.plan.Source.ID != sourceID {
		return nil, domain.ErrNotFound
	}
	return m.plan, nil
}

func (m *mockLibrary) RemoveSource(_ context.Context, sourceID int64) (*driving.RemovalReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.removed = append(m.removed, sourceID)
	return m.removal, nil
}

func (m *mockLibrary) Reindex(_ context.Context) (*driving.ReindexReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reindex, nil
}

// ==================== Thread resolver mock ====================

type mockResolver struct {
	thread     *domain.Thread
	err        error
	externalID string
	resolved   []string
}

func (m *mockResolver) Resolve(_ context.Context, ref string) (*domain.Thread, error) {
	m.resolved = append(m.resolved, ref)
	if m.err != nil {
		return nil, m.err
	}
	return m.thread, nil
}

func (m *mockResolver) ExternalID(string) string {
	return m.externalID
}

// ==================== Config store mock ====================

type mockConfig struct {
	data map[string]any
	err  error
}

func newMockConfig() *mockConfig {
	return &mockConfig{data: make(map[string]any)}
}

func (m *mockConfig) Get(key string) (any, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockConfig) GetString(key string) string {
	val, _ := m.data[key].(string)
	return val
}

func (m *mockConfig) GetInt(key string) int {
	val, _ := m.data[key].(int)
	return val
}

func (m *mockConfig) GetBool(key string) bool {
	val, _ := m.data[key].(bool)
	return val
}

func (m *mockConfig) Set(key string, value any) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *mockConfig) Keys() []string {
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (m *mockConfig) Path() string {
	return "/tmp/config.toml"
}

var errMockFailure = errors.New("mock failure")
