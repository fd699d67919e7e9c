package services

import "strings"

// BuildChunk composes the text blob embedded for a book. The source
// context is repeated under two framings ("Recommended for" and
// "Category") to bias the embedding toward topical relevance, followed
// by the title/author line, the description, and a trailing tag line.
//
// The function is pure and deterministic: identical inputs always
// yield a byte-identical string, which embedding reproducibility
// depends on.
func BuildChunk(title, author, description string, sourceTitles []string) string {
	var parts []string

	for _, st := range sourceTitles {
		parts = append(parts, "Recommended for: "+st)
		parts = append(parts, "Category: "+st)
	}

	parts = append(parts, title+" by "+author)

	if description != "" {
		parts = append(parts, description)
	}

	if len(sourceTitles) > 0 {
		parts = append(parts, "Tags: "+strings.Join(sourceTitles, ", "))
	}

	return strings.Join(parts, "\n\n")
}
