// Package ollama provides a mention extraction adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.MentionExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 60 * time.Second
)

// extractPrompt instructs the model to report only books named in the
// text. The grounding filter catches what slips through anyway.
const extractPrompt = `Extract book titles and authors from this text. STRICT RULES:
- ONLY extract books that are EXPLICITLY mentioned by name in the text
- Do NOT invent or guess books - if unsure, skip it
- Do NOT include books from your training data that aren't in the text
- If no books are clearly mentioned, return []

Return JSON array: [{"title": "exact title from text", "author": "author if mentioned"}]

Text: %s

JSON:`

// summarizePrompt condenses a catalog description for display.
const summarizePrompt = `Summarize this book description in 1-2 sentences (max 150 characters). Focus on genre and core premise. No spoilers. Reply with ONLY the summary, no preamble.

Description: %s

Summary:`

// shortDescriptionLimit is the length under which a description is
// returned as its own summary.
const shortDescriptionLimit = 50

// summaryTruncateLimit caps summaries the model refuses to keep short.
const summaryTruncateLimit = 200

// Config holds configuration for the Ollama extractor.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Extractor extracts book mentions and summarizes descriptions using
// an Ollama model.
type Extractor struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewExtractor creates a new Ollama extractor.
func NewExtractor(cfg Config) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Extract asks the model for book mentions in text and returns the raw
// response. Parsing and validation happen in the core; this adapter
// only talks the wire protocol.
func (e *Extractor) Extract(ctx context.Context, text string) (string, error) {
	return e.generate(ctx, fmt.Sprintf(extractPrompt, text))
}

// Summarize condenses a book description to one or two sentences.
// Descriptions already under 50 characters are returned as-is without
// a model round trip.
func (e *Extractor) Summarize(ctx context.Context, description string) (string, error) {
	if len(description) < shortDescriptionLimit {
		return description, nil
	}

	result, err := e.generate(ctx, fmt.Sprintf(summarizePrompt, description))
	if err != nil {
		return "", err
	}
	return cleanSummary(result), nil
}

// generate runs one non-streaming completion.
func (e *Extractor) generate(ctx context.Context, prompt string) (string, error) {
	jsonBody, err := json.Marshal(generateRequest{
		Model:  e.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
		}
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return genResp.Response, nil
}

// summaryPreambles are lead-ins the model adds despite the prompt.
var summaryPreambles = []string{
	"here is a summary",
	"here's a summary",
	"here is the summary",
	"here's the summary",
	"summary:",
}

// cleanSummary strips quotes and preambles and enforces the length cap.
func cleanSummary(result string) string {
	result = strings.TrimSpace(result)
	result = strings.Trim(result, `"'`)

	lower := strings.ToLower(result)
	for _, preamble := range summaryPreambles {
		if strings.HasPrefix(lower, preamble) {
			result = strings.TrimLeft(result[len(preamble):], ": \n")
			break
		}
	}

	if len(result) > summaryTruncateLimit {
		result = result[:summaryTruncateLimit-3] + "..."
	}
	return result
}

// isConnectionError reports whether err means Ollama is not reachable,
// as opposed to a failed request against a running server.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// ModelName returns the name of the model being used.
func (e *Extractor) ModelName() string {
	return e.model
}

// Ping validates the service is reachable by checking the /api/tags
// endpoint without running inference.
func (e *Extractor) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (e *Extractor) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
