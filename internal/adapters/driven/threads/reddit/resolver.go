// Package reddit implements the thread resolver port for Reddit
// threads. Reddit exposes every thread as public JSON by appending
// .json to the permalink, so no API credentials are needed. A local
// file holding the same JSON is accepted as well, which also serves
// as the offline cache format.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
	"github.com/custodia-labs/tbr-cli/internal/logger"
)

var _ driven.ThreadResolver = (*Resolver)(nil)

// Default configuration values.
const (
	DefaultUserAgent = "tbr/1.0 (book recommendation tracker)"
	DefaultTimeout   = 15 * time.Second
)

// jsonSuffix is Reddit's public JSON endpoint suffix.
const jsonSuffix = ".json"

// threadIDPattern matches the thread ID in a comments permalink.
var threadIDPattern = regexp.MustCompile(`/comments/([a-zA-Z0-9]+)`)

// fileIDPattern matches a bare thread ID used as a cache filename.
var fileIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Config holds resolver settings.
type Config struct {
	// UserAgent identifies the client to Reddit. Anonymous JSON access
	// is rate limited per user agent.
	UserAgent string

	// Timeout bounds the fetch (default: 15s).
	Timeout time.Duration
}

// Resolver loads Reddit threads from URLs or local JSON files.
type Resolver struct {
	client    *http.Client
	userAgent string
}

// NewResolver creates a Reddit thread resolver.
func NewResolver(cfg Config) *Resolver {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Resolver{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Resolve loads the thread behind ref. A path to an existing file is
// read directly; anything else is treated as a Reddit URL.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*domain.Thread, error) {
	if _, err := os.Stat(ref); err == nil {
		return r.resolveFile(ref)
	}
	return r.resolveURL(ctx, ref)
}

// ExternalID extracts the thread ID from a permalink or a cache
// filename, or returns "" when ref carries neither.
func (r *Resolver) ExternalID(ref string) string {
	if m := threadIDPattern.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	if strings.HasSuffix(ref, jsonSuffix) {
		name := strings.TrimSuffix(ref[strings.LastIndexByte(ref, '/')+1:], jsonSuffix)
		if fileIDPattern.MatchString(name) {
			return name
		}
	}
	return ""
}

func (r *Resolver) resolveFile(path string) (*domain.Thread, error) {
	logger.Debug("Loading thread from file %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading thread file: %w", err)
	}
	return parseThread(data)
}

func (r *Resolver) resolveURL(ctx context.Context, rawURL string) (*domain.Thread, error) {
	url := normaliseURL(rawURL)
	logger.Debug("Fetching thread %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching thread: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return parseThread(data)
}

// normaliseURL appends .json to the thread URL, keeping any query
// string intact.
func normaliseURL(url string) string {
	if base, params, found := strings.Cut(url, "?"); found {
		if !strings.HasSuffix(base, jsonSuffix) {
			base = strings.TrimRight(base, "/") + jsonSuffix
		}
		return base + "?" + params
	}
	if strings.HasSuffix(url, jsonSuffix) {
		return url
	}
	return strings.TrimRight(url, "/") + jsonSuffix
}

// listing mirrors Reddit's kind/data envelope.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []child `json:"children"`
	} `json:"data"`
}

type child struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// postData is the subset of submission fields we read.
type postData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Selftext  string `json:"selftext"`
	Subreddit string `json:"subreddit"`
	Permalink string `json:"permalink"`
}

// commentData is the subset of comment fields we read. Replies is kept
// raw because Reddit sends "" instead of an object for leaf comments.
type commentData struct {
	ID      string          `json:"id"`
	Body    string          `json:"body"`
	Score   int             `json:"score"`
	Replies json.RawMessage `json:"replies"`
}

// parseThread decodes Reddit's two-element listing: the submission
// first, then the comment tree, which gets flattened depth-first.
func parseThread(data []byte) (*domain.Thread, error) {
	var listings []listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidThread, err)
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("%w: expected post and comment listings, got %d",
			domain.ErrInvalidThread, len(listings))
	}
	if len(listings[0].Data.Children) == 0 {
		return nil, fmt.Errorf("%w: post listing is empty", domain.ErrInvalidThread)
	}

	var post postData
	if err := json.Unmarshal(listings[0].Data.Children[0].Data, &post); err != nil {
		return nil, fmt.Errorf("%w: decoding post: %v", domain.ErrInvalidThread, err)
	}
	if post.ID == "" {
		return nil, fmt.Errorf("%w: post has no ID", domain.ErrInvalidThread)
	}

	thread := &domain.Thread{
		ID:        post.ID,
		Title:     post.Title,
		Selftext:  post.Selftext,
		Kind:      "reddit",
		Subreddit: post.Subreddit,
		URL:       "https://reddit.com" + post.Permalink,
	}
	flattenComments(listings[1].Data.Children, 0, &thread.Comments)
	return thread, nil
}

// flattenComments walks the comment tree depth-first. Non-comment
// nodes ("more" stubs and the like) are skipped along with their
// subtrees.
func flattenComments(children []child, depth int, out *[]domain.Comment) {
	for _, item := range children {
		if item.Kind != "t1" {
			continue
		}

		var comment commentData
		if err := json.Unmarshal(item.Data, &comment); err != nil {
			continue
		}

		*out = append(*out, domain.Comment{
			ID:    comment.ID,
			Body:  comment.Body,
			Score: comment.Score,
			Depth: depth,
		})

		// Leaf comments carry replies as "" rather than an object.
		var replies listing
		if err := json.Unmarshal(comment.Replies, &replies); err == nil {
			flattenComments(replies.Data.Children, depth+1, out)
		}
	}
}
