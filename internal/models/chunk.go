package models

import (
	"github.com/google/uuid"
)

// SummaryChunk is one titled section of a generated financial summary. Each
// chunk gets a fresh ID at creation time; the ID keys the chunk in the
// retrieval index so a later generation can replace it.
type SummaryChunk struct {
	ID    uuid.UUID
	Title string // heading line, e.g. "1. Concise Summary of Spending Habits"
	Text  string // body following the heading, trimmed; may be empty
}

// Content returns the text that gets embedded and indexed for the chunk.
func (c SummaryChunk) Content() string {
	if c.Text == "" {
		return c.Title
	}
	return c.Title + "\n" + c.Text
}

// IndexedChunk is a SummaryChunk paired with its embedding, as stored in the
// retrieval index.
type IndexedChunk struct {
	ID        uuid.UUID
	Title     string
	Content   string
	Embedding []float32
}
