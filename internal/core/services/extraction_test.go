package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		ok       bool
		expected []domain.Candidate
	}{
		{
			name:     "clean array",
			raw:      `[{"title": "Dune", "author": "Frank Herbert"}]`,
			ok:       true,
			expected: []domain.Candidate{{Title: "Dune", Author: "Frank Herbert"}},
		},
		{
			name: "array wrapped in prose",
			raw:  "Here are the books I found:\n```json\n[{\"title\": \"Dune\", \"author\": \"Frank Herbert\"}]\n```\nHope that helps!",
			ok:   true,
			expected: []domain.Candidate{
				{Title: "Dune", Author: "Frank Herbert"},
			},
		},
		{
			name:     "bare object treated as single entry",
			raw:      `{"title": "Dune", "author": "Frank Herbert"}`,
			ok:       true,
			expected: []domain.Candidate{{Title: "Dune", Author: "Frank Herbert"}},
		},
		{
			name:     "empty array",
			raw:      `[]`,
			ok:       true,
			expected: []domain.Candidate{},
		},
		{
			name: "missing author field",
			raw:  `[{"title": "Dune"}]`,
			ok:   true,
			expected: []domain.Candidate{
				{Title: "Dune", Author: ""},
			},
		},
		{
			name: "non-object entries dropped",
			raw:  `["just a string", {"title": "Dune", "author": "Frank Herbert"}, 42]`,
			ok:   true,
			expected: []domain.Candidate{
				{Title: "Dune", Author: "Frank Herbert"},
			},
		},
		{
			name: "no json at all",
			raw:  "I could not find any books in this text.",
			ok:   false,
		},
		{
			name: "malformed json",
			raw:  `[{"title": "Dune"`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, ok := parseCandidates(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, candidates)
			}
		})
	}
}

func TestFilterCandidates_Placeholders(t *testing.T) {
	source := "someone recommended dune and hyperion in this thread"

	candidates := []domain.Candidate{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "null"},
		{Title: "Unknown"},
		{Title: "N/A"},
		{Title: "none"},
		{Title: "   "},
		{Title: "Hyperion", Author: "Dan Simmons"},
	}

	valid := filterCandidates(candidates, source)

	require.Len(t, valid, 2)
	assert.Equal(t, "Dune", valid[0].Title)
	assert.Equal(t, "Hyperion", valid[1].Title)
}

func TestFilterCandidates_TrimsFields(t *testing.T) {
	valid := filterCandidates(
		[]domain.Candidate{{Title: "  Dune  ", Author: "  Frank Herbert  "}},
		"i loved dune",
	)

	require.Len(t, valid, 1)
	assert.Equal(t, "Dune", valid[0].Title)
	assert.Equal(t, "Frank Herbert", valid[0].Author)
}

func TestGrounded(t *testing.T) {
	source := "you should really read dune, the worldbuilding is incredible"

	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"title word present", "Dune", true},
		{"one of several words present", "Dune Messiah", true},
		{"no word present", "Project Hail Mary", false},
		{"case insensitive", "DUNE", true},
		{"only short words, assumed valid", "It", true},
		{"short words skipped, long word absent", "The Mars Saga", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, grounded(tt.title, source))
		})
	}
}

func TestExtractionFilter_Candidates(t *testing.T) {
	extractor := &mockExtractor{
		fallback: candidateJSON(
			domain.Candidate{Title: "Dune", Author: "Frank Herbert"},
			domain.Candidate{Title: "Invented Book", Author: "Nobody"},
		),
	}
	filter := NewExtractionFilter(extractor, NewNotifier(nil))

	candidates := filter.Candidates(context.Background(), "everyone here loves dune")

	// The hallucinated title is dropped; the grounded one survives.
	require.Len(t, candidates, 1)
	assert.Equal(t, "Dune", candidates[0].Title)
}

func TestExtractionFilter_Candidates_LLMError(t *testing.T) {
	extractor := &mockExtractor{
		extractErr: domain.ErrLLMUnavailable,
	}
	notifier := NewNotifier(nil)
	filter := NewExtractionFilter(extractor, notifier)

	candidates := filter.Candidates(context.Background(), "some text")

	assert.Empty(t, candidates)
	assert.True(t, notifier.Warned(warnLLM))
}

func TestExtractionFilter_Candidates_UnparseableOutput(t *testing.T) {
	extractor := &mockExtractor{fallback: "sorry, no books here"}
	notifier := NewNotifier(nil)
	filter := NewExtractionFilter(extractor, notifier)

	candidates := filter.Candidates(context.Background(), "some text")

	assert.Empty(t, candidates)
	assert.True(t, notifier.Warned(warnExtract))
}

func TestExtractionFilter_Candidates_WarnsOncePerClass(t *testing.T) {
	extractor := &mockExtractor{extractErr: errors.New("connection refused")}
	var buf testBuffer
	notifier := NewNotifier(&buf)
	filter := NewExtractionFilter(extractor, notifier)
	ctx := context.Background()

	filter.Candidates(ctx, "first block")
	filter.Candidates(ctx, "second block")
	filter.Candidates(ctx, "third block")

	assert.Equal(t, 1, buf.writes)
}
