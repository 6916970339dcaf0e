// internal/services/branch_service.go
package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/apperrors"
	"github.com/inkforge/storyassist/internal/client"
	"github.com/inkforge/storyassist/internal/models"
)

// summaryLimit is the rune length at which custom branch summaries truncate
const summaryLimit = 100

// BranchService is the "what-if" explorer: a linear stack of scenario →
// choice → new-scenario transitions. State is session-scoped; there is no
// terminal state.
type BranchService struct {
	mu         sync.Mutex
	generator  GenerationClient
	contextSvc *ContextService
	logger     *zap.Logger

	scenarioID   string
	scenarioText string
	question     string
	candidates   []models.Branch
	history      []models.BranchHistoryEntry
	lastError    string
}

// BranchState is a renderable snapshot of the explorer
type BranchState struct {
	ScenarioID   string                      `json:"scenario_id"`
	ScenarioText string                      `json:"scenario_text"`
	Question     string                      `json:"question"`
	Candidates   []models.Branch             `json:"candidates"`
	History      []models.BranchHistoryEntry `json:"history"`
	Error        string                      `json:"error,omitempty"`
}

// NewBranchService creates an explorer at the root scenario with no history
func NewBranchService(generator GenerationClient, contextSvc *ContextService, logger *zap.Logger) *BranchService {
	return &BranchService{
		generator:  generator,
		contextSvc: contextSvc,
		logger:     logger.Named("BranchService"),
	}
}

// Generate requests candidate branches for the given scenario text and
// question. On failure the error is recorded and the explorer state is left
// unchanged.
func (s *BranchService) Generate(ctx context.Context, question, scenarioText string) error {
	if strings.TrimSpace(scenarioText) == "" {
		return apperrors.NewValidation("scenario text is required to generate branches")
	}
	if strings.TrimSpace(question) == "" {
		return apperrors.NewValidation("a branching question is required")
	}

	branches, err := s.generator.GenerateStoryBranches(ctx, client.Request{
		Instruction:  question,
		CurrentText:  scenarioText,
		StoryContext: s.contextSvc.Snapshot(),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastError = err.Error()
		s.logger.Warn("branch generation failed", zap.Error(err))
		return err
	}
	s.scenarioText = scenarioText
	s.question = question
	s.candidates = branches
	s.lastError = ""
	return nil
}

// Select commits to one candidate branch: the current scenario is pushed
// onto the history stack and the branch's content becomes the new scenario
// text
func (s *BranchService) Select(branch models.Branch) error {
	if branch.ID == "" {
		return apperrors.NewValidation("branch id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, models.BranchHistoryEntry{
		ScenarioID:     s.scenarioID,
		ScenarioText:   s.scenarioText,
		BranchQuestion: s.question,
		Branches:       s.candidates,
	})
	s.scenarioID = branch.ID
	s.scenarioText = branch.Content
	s.question = ""
	s.candidates = nil
	s.lastError = ""
	return nil
}

// AddCustom appends a user-authored branch to the current candidate list
// without changing the scenario. The summary is the content truncated to 100
// runes with an ellipsis marker.
func (s *BranchService) AddCustom(title, content string) (models.Branch, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return models.Branch{}, apperrors.NewValidation("custom branches need both a title and content")
	}

	branch := models.Branch{
		ID:      uuid.NewString(),
		Title:   title,
		Summary: truncateSummary(content),
		Content: content,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, branch)
	return branch, nil
}

// Back undoes the most recent Select. With an empty history it is a no-op.
func (s *BranchService) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return
	}
	top := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.scenarioID = top.ScenarioID
	s.scenarioText = top.ScenarioText
	s.question = top.BranchQuestion
	s.candidates = top.Branches
	s.lastError = ""
}

// State returns a snapshot for rendering
func (s *BranchService) State() BranchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BranchState{
		ScenarioID:   s.scenarioID,
		ScenarioText: s.scenarioText,
		Question:     s.question,
		Candidates:   append([]models.Branch(nil), s.candidates...),
		History:      append([]models.BranchHistoryEntry(nil), s.history...),
		Error:        s.lastError,
	}
}

// HistoryTitles reconstructs the title of the branch chosen at each history
// step by looking up the next entry's scenario id (the final step resolves
// against the current scenario). This assumes the history is linear and
// never reordered.
func (s *BranchService) HistoryTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, len(s.history))
	for i, entry := range s.history {
		chosenID := s.scenarioID
		if i+1 < len(s.history) {
			chosenID = s.history[i+1].ScenarioID
		}
		titles[i] = "Unknown branch"
		for _, b := range entry.Branches {
			if b.ID == chosenID {
				titles[i] = b.Title
				break
			}
		}
	}
	return titles
}

func truncateSummary(content string) string {
	runes := []rune(content)
	if len(runes) <= summaryLimit {
		return content
	}
	return string(runes[:summaryLimit]) + "..."
}
