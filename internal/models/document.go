// internal/models/document.go
package models

import (
	"strings"
	"time"
)

// Document is the story text being edited, plus the derived state the
// presentation shell renders next to it
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	WordCount    int       `json:"word_count"`
	Saved        bool      `json:"saved"`
	LastModified time.Time `json:"last_modified"`
}

// CountWords returns the number of whitespace-separated words in text
func CountWords(text string) int {
	return len(strings.Fields(text))
}
