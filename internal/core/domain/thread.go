package domain

import "strings"

// Thread is a normalised discussion thread: the post itself plus its
// reply tree flattened into an ordered, depth-annotated comment list.
type Thread struct {
	// ID is the platform's natural key for the thread.
	ID string

	// Title is the thread title.
	Title string

	// Selftext is the post body, possibly empty for link posts.
	Selftext string

	// Kind identifies the originating platform (e.g., "reddit").
	Kind string

	// URL is the thread permalink.
	URL string

	// Subreddit is the community the thread was posted in.
	Subreddit string

	// Comments are the flattened replies in tree order.
	Comments []Comment
}

// Comment is a single flattened reply within a thread.
type Comment struct {
	// ID is the platform's comment identifier.
	ID string

	// Body is the comment text.
	Body string

	// Score is the comment's vote score.
	Score int

	// Depth is the nesting depth in the original reply tree (0 = top level).
	Depth int
}

// CommentTexts returns the ordered text blocks to run extraction over:
// the post body first (when present), then each comment body in
// flattened order. Empty, "[deleted]" and "[removed]" bodies are
// skipped.
func (t *Thread) CommentTexts() []string {
	var texts []string

	if strings.TrimSpace(t.Selftext) != "" {
		texts = append(texts, t.Selftext)
	}

	for _, c := range t.Comments {
		body := strings.TrimSpace(c.Body)
		if body == "" || body == "[deleted]" || body == "[removed]" {
			continue
		}
		texts = append(texts, body)
	}

	return texts
}
