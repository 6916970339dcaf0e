// internal/services/context_service.go
package services

import (
	"sync"

	"github.com/inkforge/storyassist/internal/apperrors"
	"github.com/inkforge/storyassist/internal/models"
)

// ContextService holds the session's story context: a flat mapping of named
// story attributes mutated by the sidebar forms and read by every generation
// request. Lifetime is the session; nothing persists.
type ContextService struct {
	mu  sync.RWMutex
	ctx models.StoryContext
}

// NewContextService creates an empty store
func NewContextService() *ContextService {
	return &ContextService{}
}

// Set assigns one field. Values are free text and not validated.
func (s *ContextService) Set(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ctx.SetField(field, value) {
		return apperrors.NewValidation("unknown story context field: " + field)
	}
	return nil
}

// Get returns one field's value
func (s *ContextService) Get(field string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.ctx.Field(field)
	if !ok {
		return "", apperrors.NewValidation("unknown story context field: " + field)
	}
	return value, nil
}

// All returns a copy of the whole context for rendering
func (s *ContextService) All() models.StoryContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Snapshot returns the context to attach to an outgoing request: nil when
// every field is blank (the request then omits story_context entirely),
// otherwise all fields verbatim, including the blank ones.
func (s *ContextService) Snapshot() *models.StoryContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ctx.IsBlank() {
		return nil
	}
	snapshot := s.ctx
	return &snapshot
}
