// internal/backend/handlers.go
package backend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/llm"
	"github.com/inkforge/storyassist/internal/models"
)

// generateRequest is the body of every /generate endpoint
type generateRequest struct {
	Instruction  string               `json:"instruction"`
	CurrentText  string               `json:"current_text"`
	Selection    string               `json:"selection"`
	StoryContext *models.StoryContext `json:"story_context"`
}

// Handler serves the generation API on top of an LLM provider
type Handler struct {
	provider  llm.Provider
	model     string
	maxTokens int
	docs      *DocumentStore
	bible     *StoryBibleStore
	logger    *zap.Logger
}

// NewHandler creates the backend handler
func NewHandler(provider llm.Provider, model string, maxContextTokens int, logger *zap.Logger) *Handler {
	return &Handler{
		provider:  provider,
		model:     model,
		maxTokens: maxContextTokens,
		docs:      NewDocumentStore(),
		bible:     NewStoryBibleStore(),
		logger:    logger.Named("Backend"),
	}
}

func fail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

func (h *Handler) bindGenerate(c *gin.Context) (generateRequest, bool) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	req.CurrentText = trimToTokenBudget(req.CurrentText, h.model, h.maxTokens)
	return req, true
}

func (h *Handler) complete(c *gin.Context, systemPrompt, prompt string) (string, bool) {
	resp, err := h.provider.CompleteText(c.Request.Context(), llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Model:        h.model,
	})
	if err != nil {
		h.logger.Error("completion failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "generation failed: "+err.Error())
		return "", false
	}
	return resp.Text, true
}

// Write handles POST /generate/write
func (h *Handler) Write(c *gin.Context) {
	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}
	text, ok := h.complete(c, writeSystemPrompt, writePrompt(req))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated_text": text})
}

// Rewrite handles POST /generate/rewrite
func (h *Handler) Rewrite(c *gin.Context) {
	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Selection) == "" {
		fail(c, http.StatusUnprocessableEntity, "selection is required")
		return
	}
	text, ok := h.complete(c, rewriteSystemPrompt, rewritePrompt(req))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated_text": text})
}

// Describe handles POST /generate/describe
func (h *Handler) Describe(c *gin.Context) {
	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}
	text, ok := h.complete(c, describeSystemPrompt, describePrompt(req))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated_text": text})
}

// Brainstorm handles POST /generate/brainstorm
func (h *Handler) Brainstorm(c *gin.Context) {
	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}
	text, ok := h.complete(c, brainstormSystemPrompt, brainstormPrompt(req))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated_text": text})
}

// ContextElement handles POST /generate/context/:element_type
func (h *Handler) ContextElement(c *gin.Context) {
	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}
	elementType := c.Param("element_type")
	text, ok := h.complete(c, storyBibleSystemPrompt, contextElementPrompt(elementType, req))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated_text": text})
}

// StoryBranches handles POST /generate/story-branches. The model is asked
// for strict JSON; an answer that cannot be parsed becomes an empty branch
// list rather than an error, which the editing client treats the same way.
func (h *Handler) StoryBranches(c *gin.Context) {
	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}
	text, ok := h.complete(c, branchesSystemPrompt, branchesPrompt(req))
	if !ok {
		return
	}

	branches, ok := parseBranches(text)
	if !ok {
		h.logger.Warn("model produced unparsable branch JSON")
		branches = []models.Branch{}
	}
	for i := range branches {
		if branches[i].ID == "" {
			branches[i].ID = uuid.NewString()
		}
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

// parseBranches extracts the branches array from model output, tolerating
// markdown code fences around the JSON. The second result reports whether the
// output was valid JSON at all; valid JSON without a branches array is a
// normal empty result, not a parse failure.
func parseBranches(text string) ([]models.Branch, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var payload struct {
		Branches []models.Branch `json:"branches"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return nil, false
	}
	if payload.Branches == nil {
		return []models.Branch{}, true
	}
	return payload.Branches, true
}

// CreateDocument handles POST /documents/
func (h *Handler) CreateDocument(c *gin.Context) {
	c.JSON(http.StatusOK, h.docs.Create())
}

// ListDocuments handles GET /documents/
func (h *Handler) ListDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, h.docs.List())
}

// GetDocument handles GET /documents/:doc_id
func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.docs.Get(c.Param("doc_id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateDocument handles PUT /documents/:doc_id
func (h *Handler) UpdateDocument(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
		Title   string `json:"title"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	doc, err := h.docs.Update(c.Param("doc_id"), body.Content, body.Title)
	if err != nil {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteDocument handles DELETE /documents/:doc_id
func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.docs.Delete(c.Param("doc_id")); err != nil {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

// CreateStoryBibleItem handles POST /story-bible/
func (h *Handler) CreateStoryBibleItem(c *gin.Context) {
	var body struct {
		Category   string `json:"category"`
		Content    string `json:"content"`
		DocumentID string `json:"document_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if !h.docs.Has(body.DocumentID) {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}
	if _, ok := storyBiblePrompts[body.Category]; !ok {
		fail(c, http.StatusBadRequest, "Invalid story bible category")
		return
	}

	prompt := contextElementPrompt(body.Category, generateRequest{
		Instruction: storyBiblePrompts[body.Category],
		CurrentText: trimToTokenBudget(body.Content, h.model, h.maxTokens),
	})
	text, ok := h.complete(c, storyBibleSystemPrompt, prompt)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.bible.Put(body.DocumentID, body.Category, text))
}

// GetStoryBible handles GET /story-bible/:doc_id
func (h *Handler) GetStoryBible(c *gin.Context) {
	docID := c.Param("doc_id")
	if !h.docs.Has(docID) {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}
	c.JSON(http.StatusOK, h.bible.List(docID))
}

// GetStoryBibleItem handles GET /story-bible/:doc_id/:category
func (h *Handler) GetStoryBibleItem(c *gin.Context) {
	docID := c.Param("doc_id")
	if !h.docs.Has(docID) {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}
	item, err := h.bible.Get(docID, c.Param("category"))
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, item)
}
