package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

var (
	boldTitle  = color.New(color.Bold)
	greenScore = color.New(color.FgGreen)

	statusColours = map[domain.Status]*color.Color{
		domain.StatusNew:        color.New(color.FgCyan),
		domain.StatusViewed:     color.New(color.FgWhite),
		domain.StatusInterested: color.New(color.FgYellow),
		domain.StatusReading:    color.New(color.FgGreen),
		domain.StatusFinished:   color.New(color.FgBlue),
		domain.StatusDropped:    color.New(color.FgRed),
		domain.StatusDeleted:    color.New(color.FgHiBlack),
	}
)

// formatTitle renders "Title by Author" with the title in bold.
func formatTitle(book *domain.Book) string {
	title := boldTitle.Sprint(book.Title)
	if book.Author == "" {
		return title
	}
	return fmt.Sprintf("%s by %s", title, book.Author)
}

// formatScore renders a similarity score to two decimals.
func formatScore(score float64) string {
	return greenScore.Sprintf("%.2f", score)
}

// formatStatus renders a status in its colour.
func formatStatus(status domain.Status) string {
	if c, ok := statusColours[status]; ok {
		return c.Sprint(status.String())
	}
	return status.String()
}
