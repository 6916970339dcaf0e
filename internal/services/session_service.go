// internal/services/session_service.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/apperrors"
	"github.com/inkforge/storyassist/internal/client"
	"github.com/inkforge/storyassist/internal/editor"
	"github.com/inkforge/storyassist/internal/models"
)

// GenerationClient is the request/response contract with the generation
// backend. *client.Client implements it; tests substitute fakes.
type GenerationClient interface {
	Write(ctx context.Context, req client.Request) (string, error)
	Rewrite(ctx context.Context, req client.Request) (string, error)
	Describe(ctx context.Context, req client.Request) (string, error)
	Brainstorm(ctx context.Context, req client.Request) (string, error)
	GenerateContextElement(ctx context.Context, elementType string, req client.Request) (string, error)
	GenerateStoryBranches(ctx context.Context, req client.Request) ([]models.Branch, error)
}

// Session is one editing session: the editable surface, its selection
// tracker, the story context and the branch explorer, plus the derived
// document state the shell renders
type Session struct {
	ID string

	mu         sync.Mutex
	surface    *editor.TreeSurface
	tracker    *editor.Tracker
	contextSvc *ContextService
	branches   *BranchService
	title      string
	saved      bool
	generating bool
	lastError  string
	modified   time.Time
}

// SessionState is the renderable snapshot broadcast to the shell after every
// mutation
type SessionState struct {
	ID           string              `json:"id"`
	Document     models.Document     `json:"document"`
	Tooltip      editor.TooltipState `json:"tooltip"`
	IsGenerating bool                `json:"is_generating"`
	Error        string              `json:"error,omitempty"`
	StoryContext models.StoryContext `json:"story_context"`
	Branches     BranchState         `json:"branches"`
}

// Notifier receives session state after each mutation; the WebSocket hub
// registers one to push updates to connected shells
type Notifier func(state SessionState)

// SessionService owns all live editing sessions
type SessionService struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	generator GenerationClient
	logger    *zap.Logger
	notify    Notifier
}

// NewSessionService creates the session registry
func NewSessionService(generator GenerationClient, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions:  make(map[string]*Session),
		generator: generator,
		logger:    logger.Named("SessionService"),
	}
}

// SetNotifier registers the state broadcast hook
func (s *SessionService) SetNotifier(n Notifier) {
	s.notify = n
}

// Create starts a new editing session with an empty document
func (s *SessionService) Create(title string) SessionState {
	surface := editor.NewSurface()
	contextSvc := NewContextService()
	sess := &Session{
		ID:         uuid.NewString(),
		surface:    surface,
		tracker:    editor.NewTracker(surface),
		contextSvc: contextSvc,
		branches:   NewBranchService(s.generator, contextSvc, s.logger),
		title:      title,
		saved:      true,
		modified:   time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("sessionID", sess.ID))
	return s.snapshot(sess)
}

// Close removes a session
func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return apperrors.NewNotFound("session not found: " + id)
	}
	delete(s.sessions, id)
	return nil
}

// State returns the current snapshot of a session
func (s *SessionService) State(id string) (SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	return s.snapshot(sess), nil
}

// UpdateContent applies a direct user edit: the surface is replaced, the
// document is no longer saved, and any captured anchor is discarded
func (s *SessionService) UpdateContent(id, text string) (SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	sess.mu.Lock()
	sess.surface.SetText(text)
	sess.tracker.Clear()
	sess.saved = false
	sess.modified = time.Now()
	sess.mu.Unlock()
	return s.publish(sess), nil
}

// Save marks the document saved. Persistence is the caller's concern; the
// flag only drives the "unsaved changes" indicator.
func (s *SessionService) Save(id string) (SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	sess.mu.Lock()
	sess.saved = true
	sess.mu.Unlock()
	return s.publish(sess), nil
}

// UpdateSelection feeds the live selection into the tracker and returns the
// derived tooltip placement with the rest of the state
func (s *SessionService) UpdateSelection(id string, sel editor.Selection) (SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	sess.mu.Lock()
	sess.tracker.Update(sel)
	sess.mu.Unlock()
	return s.snapshot(sess), nil
}

// Write generates new content and appends it after a separator
func (s *SessionService) Write(ctx context.Context, id, instruction string) (SessionState, error) {
	return s.generateAndAppend(ctx, id, instruction, s.generator.Write)
}

// Describe expands the selection (or the document) into richer description
// and appends the result
func (s *SessionService) Describe(ctx context.Context, id, instruction string) (SessionState, error) {
	return s.generateAndAppend(ctx, id, instruction, s.generator.Describe)
}

// Brainstorm appends generated ideas
func (s *SessionService) Brainstorm(ctx context.Context, id, instruction string) (SessionState, error) {
	return s.generateAndAppend(ctx, id, instruction, s.generator.Brainstorm)
}

// Rewrite replaces the anchored selection with generated text. The anchor is
// consumed by the splice; a missing or blank selection fails locally before
// any network call.
func (s *SessionService) Rewrite(ctx context.Context, id, instruction string) (SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}

	req, anchor, err := s.begin(sess, instruction)
	if err != nil {
		return s.snapshot(sess), err
	}

	text, genErr := s.generator.Rewrite(ctx, req)

	sess.mu.Lock()
	sess.generating = false
	if genErr != nil {
		sess.lastError = genErr.Error()
	} else {
		frag := editor.ParseMarkdown(text)
		if spliceErr := sess.surface.ReplaceSpan(anchor, frag); spliceErr != nil {
			genErr = spliceErr
			sess.lastError = spliceErr.Error()
		} else {
			sess.tracker.Clear()
			sess.saved = false
			sess.lastError = ""
			sess.modified = time.Now()
		}
	}
	sess.mu.Unlock()
	return s.publish(sess), genErr
}

// GenerateContextElement generates one story-bible element and, when the
// element names a known context field, stores the result there
func (s *SessionService) GenerateContextElement(ctx context.Context, id, elementType string) (string, SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return "", SessionState{}, err
	}

	req, _, err := s.begin(sess, "")
	if err != nil {
		return "", s.snapshot(sess), err
	}
	req.Selection = ""

	text, genErr := s.generator.GenerateContextElement(ctx, elementType, req)

	sess.mu.Lock()
	sess.generating = false
	if genErr != nil {
		sess.lastError = genErr.Error()
	} else {
		sess.lastError = ""
		if _, known := (&models.StoryContext{}).Field(elementType); known {
			_ = sess.contextSvc.Set(elementType, text)
		}
	}
	sess.mu.Unlock()
	return text, s.publish(sess), genErr
}

// SetContextField assigns one story context field from the sidebar forms
func (s *SessionService) SetContextField(id, field, value string) (SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	if err := sess.contextSvc.Set(field, value); err != nil {
		return s.snapshot(sess), err
	}
	return s.publish(sess), nil
}

// Format wraps the anchored text in bold/italic/underline markup. Without an
// active anchor it is a no-op.
func (s *SessionService) Format(id, style string) (SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}

	kind, ok := map[string]editor.NodeKind{
		"bold":      editor.NodeBold,
		"italic":    editor.NodeItalic,
		"underline": editor.NodeUnderline,
	}[style]
	if !ok {
		return s.snapshot(sess), apperrors.NewValidation("unknown formatting style: " + style)
	}

	sess.mu.Lock()
	anchor := sess.tracker.Anchor()
	if anchor == nil {
		sess.mu.Unlock()
		return s.snapshot(sess), nil
	}
	err = sess.surface.WrapAnchor(anchor, kind)
	if err == nil {
		sess.tracker.Clear()
		sess.saved = false
		sess.modified = time.Now()
	}
	sess.mu.Unlock()
	return s.publish(sess), err
}

// Branches exposes the session's branch explorer
func (s *SessionService) Branches(id string) (*BranchService, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return sess.branches, nil
}

// generateAndAppend runs one append-style generation action: write,
// describe or brainstorm. Completion handling runs exactly once, on the
// success path or the error path, and the in-flight flag clears on both.
func (s *SessionService) generateAndAppend(
	ctx context.Context,
	id, instruction string,
	call func(context.Context, client.Request) (string, error),
) (SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}

	req, _, err := s.begin(sess, instruction)
	if err != nil {
		return s.snapshot(sess), err
	}

	text, genErr := call(ctx, req)

	sess.mu.Lock()
	sess.generating = false
	if genErr != nil {
		sess.lastError = genErr.Error()
	} else {
		sess.surface.AppendFragment(editor.ParseMarkdown(text))
		sess.tracker.Clear()
		sess.saved = false
		sess.lastError = ""
		sess.modified = time.Now()
	}
	sess.mu.Unlock()
	return s.publish(sess), genErr
}

// begin marks the session generating and captures the request inputs. A
// session already mid-generation rejects the action instead of racing it.
func (s *SessionService) begin(sess *Session, instruction string) (client.Request, *editor.Anchor, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.generating {
		return client.Request{}, nil, apperrors.NewConflict("a generation action is already in progress")
	}
	sess.generating = true
	req := client.Request{
		Instruction:  instruction,
		CurrentText:  sess.surface.PlainText(),
		Selection:    sess.tracker.SelectedText(),
		StoryContext: sess.contextSvc.Snapshot(),
	}
	return req, sess.tracker.Anchor(), nil
}

func (s *SessionService) get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFound("session not found: " + id)
	}
	return sess, nil
}

func (s *SessionService) snapshot(sess *Session) SessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	content := sess.surface.PlainText()
	return SessionState{
		ID: sess.ID,
		Document: models.Document{
			ID:           sess.ID,
			Title:        sess.title,
			Content:      content,
			WordCount:    models.CountWords(content),
			Saved:        sess.saved,
			LastModified: sess.modified,
		},
		Tooltip:      sess.tracker.Tooltip(),
		IsGenerating: sess.generating,
		Error:        sess.lastError,
		StoryContext: sess.contextSvc.All(),
		Branches:     sess.branches.State(),
	}
}

// publish snapshots the session and pushes the state to the notifier
func (s *SessionService) publish(sess *Session) SessionState {
	state := s.snapshot(sess)
	if s.notify != nil {
		s.notify(state)
	}
	return state
}
