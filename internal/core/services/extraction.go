package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
	"github.com/custodia-labs/tbr-cli/internal/logger"
)

// Warning classes used by the extraction filter.
const (
	warnLLM     = "llm"
	warnExtract = "extract"
)

// placeholderTitles are values the LLM emits when it has nothing to
// report. Candidates with these titles are dropped.
var placeholderTitles = map[string]bool{
	"null":    true,
	"unknown": true,
	"n/a":     true,
	"none":    true,
	"":        true,
}

// ExtractionFilter turns raw LLM output into validated candidates
// grounded in the source text. Hallucinated titles are rejected by
// checking that a significant title word actually appears in the text
// the model was shown.
type ExtractionFilter struct {
	extractor driven.MentionExtractor
	notifier  *Notifier
}

// NewExtractionFilter creates an extraction filter.
func NewExtractionFilter(extractor driven.MentionExtractor, notifier *Notifier) *ExtractionFilter {
	return &ExtractionFilter{
		extractor: extractor,
		notifier:  notifier,
	}
}

// Candidates extracts validated book candidates from one text block.
// Failures are recovered locally: a connection failure or unparseable
// response yields an empty list and a one-time warning, and ingestion
// continues with the next block. Candidate order follows the LLM
// output.
func (f *ExtractionFilter) Candidates(ctx context.Context, text string) []domain.Candidate {
	raw, err := f.extractor.Extract(ctx, text)
	if err != nil {
		f.notifier.WarnOnce(warnLLM, "extraction LLM unavailable: %v", err)
		return nil
	}

	parsed, ok := parseCandidates(raw)
	if !ok {
		f.notifier.WarnOnce(warnExtract, "extraction returned unparseable output, skipping")
		return nil
	}

	valid := filterCandidates(parsed, text)
	logger.Debug("Extraction: %d raw, %d valid candidates", len(parsed), len(valid))
	return valid
}

// parseCandidates pulls candidate entries out of a free-form LLM
// response. A JSON array anywhere in the response takes precedence;
// a bare object is accepted as a single-entry list. Non-mapping array
// entries are dropped silently.
func parseCandidates(raw string) ([]domain.Candidate, bool) {
	raw = strings.TrimSpace(raw)

	if snippet, ok := between(raw, '[', ']'); ok {
		var entries []json.RawMessage
		if err := json.Unmarshal([]byte(snippet), &entries); err == nil {
			candidates := make([]domain.Candidate, 0, len(entries))
			for _, entry := range entries {
				if c, ok := decodeCandidate(entry); ok {
					candidates = append(candidates, c)
				}
			}
			return candidates, true
		}
	}

	if snippet, ok := between(raw, '{', '}'); ok {
		if c, ok := decodeCandidate(json.RawMessage(snippet)); ok {
			return []domain.Candidate{c}, true
		}
	}

	return nil, false
}

// between returns the substring from the first open byte to the last
// close byte, inclusive.
func between(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// decodeCandidate decodes a single {title, author} mapping. Anything
// that is not a JSON object with string-ish fields is rejected.
func decodeCandidate(raw json.RawMessage) (domain.Candidate, bool) {
	var entry struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.Candidate{}, false
	}
	return domain.Candidate{Title: entry.Title, Author: entry.Author}, true
}

// filterCandidates applies the validation rules in order: placeholder
// titles are dropped, then titles failing the grounding check are
// dropped as likely hallucinated.
func filterCandidates(candidates []domain.Candidate, sourceText string) []domain.Candidate {
	sourceLower := strings.ToLower(sourceText)

	valid := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if placeholderTitles[strings.ToLower(title)] {
			continue
		}
		if !grounded(title, sourceLower) {
			logger.Debug("Dropping ungrounded candidate %q", title)
			continue
		}
		valid = append(valid, domain.Candidate{
			Title:  title,
			Author: strings.TrimSpace(c.Author),
		})
	}
	return valid
}

// grounded checks that at least one significant title word (longer
// than 3 characters) appears in the source text. Titles with no
// significant words cannot be validated and are assumed valid.
func grounded(title, sourceLower string) bool {
	titleLower := strings.ToLower(title)

	significant := false
	for _, word := range strings.Fields(titleLower) {
		if len([]rune(word)) <= 3 {
			continue
		}
		significant = true
		if strings.Contains(sourceLower, word) {
			return true
		}
	}
	return !significant
}
