// internal/api/handlers.go
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/editor"
	"github.com/inkforge/storyassist/internal/models"
	"github.com/inkforge/storyassist/internal/services"
)

// Handler exposes the editing sessions over HTTP
type Handler struct {
	sessions *services.SessionService
	hub      *Hub
	rh       *ResponseHelper
	logger   *zap.Logger
}

// NewHandler creates the API handler
func NewHandler(sessions *services.SessionService, hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		hub:      hub,
		rh:       NewResponseHelper(),
		logger:   logger.Named("API"),
	}
}

type instructionBody struct {
	Instruction string `json:"instruction"`
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var body struct {
		Title string `json:"title"`
	}
	// an empty body means an untitled story
	_ = c.ShouldBindJSON(&body)
	h.rh.Success(c, h.sessions.Create(body.Title))
}

// GetSession handles GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	state, err := h.sessions.State(c.Param("id"))
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	h.rh.Success(c, state)
}

// CloseSession handles DELETE /api/sessions/:id
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	h.rh.Success(c, gin.H{"closed": true})
}

// UpdateContent handles PUT /api/sessions/:id/content
func (h *Handler) UpdateContent(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.rh.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	state, err := h.sessions.UpdateContent(c.Param("id"), body.Content)
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	h.rh.Success(c, state)
}

// SaveSession handles POST /api/sessions/:id/save
func (h *Handler) SaveSession(c *gin.Context) {
	state, err := h.sessions.Save(c.Param("id"))
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	h.rh.Success(c, state)
}

// UpdateSelection handles POST /api/sessions/:id/selection
func (h *Handler) UpdateSelection(c *gin.Context) {
	var sel editor.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		h.rh.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	state, err := h.sessions.UpdateSelection(c.Param("id"), sel)
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	h.rh.Success(c, state)
}

// Write handles POST /api/sessions/:id/write
func (h *Handler) Write(c *gin.Context) {
	h.generation(c, h.sessions.Write)
}

// Rewrite handles POST /api/sessions/:id/rewrite
func (h *Handler) Rewrite(c *gin.Context) {
	h.generation(c, h.sessions.Rewrite)
}

// Describe handles POST /api/sessions/:id/describe
func (h *Handler) Describe(c *gin.Context) {
	h.generation(c, h.sessions.Describe)
}

// Brainstorm handles POST /api/sessions/:id/brainstorm
func (h *Handler) Brainstorm(c *gin.Context) {
	h.generation(c, h.sessions.Brainstorm)
}

func (h *Handler) generation(
	c *gin.Context,
	op func(ctx context.Context, id, instruction string) (services.SessionState, error),
) {
	var body instructionBody
	_ = c.ShouldBindJSON(&body)
	state, err := op(c.Request.Context(), c.Param("id"), body.Instruction)
	if err != nil {
		h.rh.Error(c, err, state)
		return
	}
	h.rh.Success(c, state)
}

// Format handles POST /api/sessions/:id/format
func (h *Handler) Format(c *gin.Context) {
	var body struct {
		Style string `json:"style"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.rh.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	state, err := h.sessions.Format(c.Param("id"), body.Style)
	if err != nil {
		h.rh.Error(c, err, state)
		return
	}
	h.rh.Success(c, state)
}

// SetContextField handles PUT /api/sessions/:id/context
func (h *Handler) SetContextField(c *gin.Context) {
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.rh.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	state, err := h.sessions.SetContextField(c.Param("id"), body.Field, body.Value)
	if err != nil {
		h.rh.Error(c, err, state)
		return
	}
	h.rh.Success(c, state)
}

// GenerateContextElement handles POST /api/sessions/:id/context/:element_type/generate
func (h *Handler) GenerateContextElement(c *gin.Context) {
	text, state, err := h.sessions.GenerateContextElement(
		c.Request.Context(), c.Param("id"), c.Param("element_type"))
	if err != nil {
		h.rh.Error(c, err, state)
		return
	}
	h.rh.Success(c, gin.H{"generated_text": text, "state": state})
}

// GenerateBranches handles POST /api/sessions/:id/branches/generate
func (h *Handler) GenerateBranches(c *gin.Context) {
	var body struct {
		Question     string `json:"question"`
		ScenarioText string `json:"scenario_text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.rh.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	branches, err := h.sessions.Branches(c.Param("id"))
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	if err := branches.Generate(c.Request.Context(), body.Question, body.ScenarioText); err != nil {
		h.rh.Error(c, err, branches.State())
		return
	}
	h.broadcast(c.Param("id"))
	h.rh.Success(c, branches.State())
}

// SelectBranch handles POST /api/sessions/:id/branches/select
func (h *Handler) SelectBranch(c *gin.Context) {
	var branch models.Branch
	if err := c.ShouldBindJSON(&branch); err != nil {
		h.rh.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	branches, err := h.sessions.Branches(c.Param("id"))
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	if err := branches.Select(branch); err != nil {
		h.rh.Error(c, err, branches.State())
		return
	}
	h.broadcast(c.Param("id"))
	h.rh.Success(c, branches.State())
}

// AddCustomBranch handles POST /api/sessions/:id/branches/custom
func (h *Handler) AddCustomBranch(c *gin.Context) {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.rh.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	branches, err := h.sessions.Branches(c.Param("id"))
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	branch, err := branches.AddCustom(body.Title, body.Content)
	if err != nil {
		h.rh.Error(c, err, branches.State())
		return
	}
	h.broadcast(c.Param("id"))
	h.rh.Success(c, gin.H{"branch": branch, "state": branches.State()})
}

// BranchBack handles POST /api/sessions/:id/branches/back
func (h *Handler) BranchBack(c *gin.Context) {
	branches, err := h.sessions.Branches(c.Param("id"))
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	branches.Back()
	h.broadcast(c.Param("id"))
	h.rh.Success(c, branches.State())
}

// GetBranches handles GET /api/sessions/:id/branches
func (h *Handler) GetBranches(c *gin.Context) {
	branches, err := h.sessions.Branches(c.Param("id"))
	if err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	h.rh.Success(c, gin.H{
		"state":          branches.State(),
		"history_titles": branches.HistoryTitles(),
	})
}

// SessionWebSocket handles GET /ws/sessions/:id
func (h *Handler) SessionWebSocket(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.sessions.State(id); err != nil {
		h.rh.Error(c, err, nil)
		return
	}
	h.hub.Serve(c, id)
}

// GetWebSocketStatus handles GET /api/ws/status
func (h *Handler) GetWebSocketStatus(c *gin.Context) {
	h.rh.Success(c, gin.H{"connections": h.hub.ConnectionCount()})
}

// broadcast pushes the latest full session state to watching shells after
// operations that bypass the session notifier
func (h *Handler) broadcast(id string) {
	if state, err := h.sessions.State(id); err == nil {
		h.hub.Broadcast(state)
	}
}
