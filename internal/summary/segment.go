// Package summary splits generated financial summaries into titled sections
// for indexing and retrieval.
package summary

import (
	"regexp"
	"strings"

	"expenselens/internal/models"

	"github.com/google/uuid"
)

// sectionStart matches the heading line of a top-level numbered section,
// e.g. "1. Concise Summary of Spending Habits".
var sectionStart = regexp.MustCompile(`^\s*\d+\.\s`)

// Segment splits a summary into its numbered sections, in order. A section
// runs from a heading line to the line before the next heading or the end of
// text; anything before the first heading is discarded. The heading line,
// trimmed, becomes the chunk title and the remaining lines its text. Sections
// with empty bodies are retained; text with no numbered section yields an
// empty slice. Every chunk gets a fresh ID.
func Segment(text string) []models.SummaryChunk {
	var chunks []models.SummaryChunk
	var current []string

	flush := func() {
		if current == nil {
			return
		}
		chunks = append(chunks, models.SummaryChunk{
			ID:    uuid.New(),
			Title: strings.TrimSpace(current[0]),
			Text:  strings.TrimSpace(strings.Join(current[1:], "\n")),
		})
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if sectionStart.MatchString(line) {
			flush()
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	flush()

	return chunks
}
