// internal/backend/stores.go
package backend

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inkforge/storyassist/internal/apperrors"
	"github.com/inkforge/storyassist/internal/models"
)

// DocumentStore keeps documents in memory. Durable storage is deliberately
// out of scope; this mirrors the lifetime of an editing session.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*models.Document
	seq  int
}

// NewDocumentStore creates an empty store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*models.Document)}
}

// Create adds a new untitled document
func (s *DocumentStore) Create() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	doc := &models.Document{
		ID:           fmt.Sprintf("doc_%d", s.seq),
		Title:        fmt.Sprintf("Untitled %d", s.seq),
		Saved:        true,
		LastModified: time.Now(),
	}
	s.docs[doc.ID] = doc
	return *doc
}

// List returns all documents
func (s *DocumentStore) List() []models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, *d)
	}
	return out
}

// Get returns one document
func (s *DocumentStore) Get(id string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return models.Document{}, apperrors.NewNotFound("Document not found")
	}
	return *doc, nil
}

// Update replaces a document's content and optionally its title
func (s *DocumentStore) Update(id, content, title string) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return models.Document{}, apperrors.NewNotFound("Document not found")
	}
	if title != "" {
		doc.Title = title
	}
	doc.Content = content
	doc.WordCount = models.CountWords(content)
	doc.LastModified = time.Now()
	return *doc, nil
}

// Delete removes a document and its story bible entries
func (s *DocumentStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return apperrors.NewNotFound("Document not found")
	}
	delete(s.docs, id)
	return nil
}

// Has reports whether a document exists
func (s *DocumentStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[id]
	return ok
}

// StoryBibleItem is one developed story element attached to a document
type StoryBibleItem struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// StoryBibleStore keeps per-document story bible items in memory
type StoryBibleStore struct {
	mu    sync.RWMutex
	items map[string]map[string]StoryBibleItem // docID -> category -> item
}

// NewStoryBibleStore creates an empty store
func NewStoryBibleStore() *StoryBibleStore {
	return &StoryBibleStore{items: make(map[string]map[string]StoryBibleItem)}
}

// Put stores one developed element under its document and category
func (s *StoryBibleStore) Put(docID, category, content string) StoryBibleItem {
	item := StoryBibleItem{
		ID:      fmt.Sprintf("%s_%s", category, docID),
		Type:    category,
		Title:   capitalize(category),
		Content: content,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[docID] == nil {
		s.items[docID] = make(map[string]StoryBibleItem)
	}
	s.items[docID][category] = item
	return item
}

// List returns every item for a document
func (s *StoryBibleStore) List(docID string) []StoryBibleItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoryBibleItem, 0, len(s.items[docID]))
	for _, item := range s.items[docID] {
		out = append(out, item)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Get returns one category's item for a document
func (s *StoryBibleStore) Get(docID, category string) (StoryBibleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[docID][category]
	if !ok {
		return StoryBibleItem{}, apperrors.NewNotFound(
			fmt.Sprintf("Story bible item for category '%s' not found", category))
	}
	return item, nil
}
