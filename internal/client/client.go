// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/apperrors"
	"github.com/inkforge/storyassist/internal/models"
)

// Default instructions substituted when the caller omits one
const (
	DefaultWriteInstruction      = "Continue the story"
	DefaultRewriteInstruction    = "Rewrite the following text"
	DefaultDescribeInstruction   = "Describe the following text/concept in more detail"
	DefaultBrainstormInstruction = "Brainstorm ideas based on the following"
	DefaultBranchesInstruction   = "Generate alternative story branches"
)

// ErrSelectionRequired is the fixed validation message for rewrite calls
// without a selection
const ErrSelectionRequired = "Selection is required for rewrite operation"

// Request is the body of every generation exchange. StoryContext stays nil
// when the user has filled in no context fields, which omits the key from
// the outgoing JSON entirely.
type Request struct {
	Instruction  string               `json:"instruction"`
	CurrentText  string               `json:"current_text"`
	Selection    string               `json:"selection,omitempty"`
	StoryContext *models.StoryContext `json:"story_context,omitempty"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

type branchesResponse struct {
	Branches []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Content string `json:"content"`
	} `json:"branches"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Client talks to the generation backend. It keeps no state: each call is a
// single request/response exchange with no retries and no internal timeout;
// cancellation comes from the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a generation client for the backend at baseURL
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger.Named("GenerationClient"),
	}
}

// Write generates new story content
func (c *Client) Write(ctx context.Context, req Request) (string, error) {
	if req.Instruction == "" {
		req.Instruction = DefaultWriteInstruction
	}
	return c.generate(ctx, "/generate/write", req)
}

// Rewrite rewrites the selected span. The selection is required; a blank one
// fails locally before any network call.
func (c *Client) Rewrite(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Selection) == "" {
		return "", apperrors.NewValidation(ErrSelectionRequired)
	}
	if req.Instruction == "" {
		req.Instruction = DefaultRewriteInstruction
	}
	return c.generate(ctx, "/generate/rewrite", req)
}

// Describe expands the selection or current text into richer description
func (c *Client) Describe(ctx context.Context, req Request) (string, error) {
	if req.Instruction == "" {
		req.Instruction = DefaultDescribeInstruction
	}
	return c.generate(ctx, "/generate/describe", req)
}

// Brainstorm generates loose ideas around the current text
func (c *Client) Brainstorm(ctx context.Context, req Request) (string, error) {
	if req.Instruction == "" {
		req.Instruction = DefaultBrainstormInstruction
	}
	return c.generate(ctx, "/generate/brainstorm", req)
}

// GenerateContextElement generates one story-bible element (genre, synopsis,
// characters, ...)
func (c *Client) GenerateContextElement(ctx context.Context, elementType string, req Request) (string, error) {
	if req.Instruction == "" {
		req.Instruction = fmt.Sprintf("Generate %s for my story", elementType)
	}
	return c.generate(ctx, "/generate/context/"+elementType, req)
}

// GenerateStoryBranches asks for alternative continuations. Results are
// normalized defensively: items get a fallback id and empty-string defaults,
// and a response without a branches array is an empty list, not an error.
func (c *Client) GenerateStoryBranches(ctx context.Context, req Request) ([]models.Branch, error) {
	if req.Instruction == "" {
		req.Instruction = DefaultBranchesInstruction
	}
	body, err := c.exchange(ctx, "/generate/story-branches", req)
	if err != nil {
		return nil, err
	}
	var parsed branchesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewParse("failed to parse story branches", err)
	}
	branches := make([]models.Branch, 0, len(parsed.Branches))
	for _, b := range parsed.Branches {
		branch := models.Branch{
			ID:      b.ID,
			Title:   b.Title,
			Summary: b.Summary,
			Content: b.Content,
		}
		if branch.ID == "" {
			branch.ID = uuid.NewString()
		}
		if branch.Title == "" {
			branch.Title = "Untitled Branch"
		}
		branches = append(branches, branch)
	}
	return branches, nil
}

func (c *Client) generate(ctx context.Context, path string, req Request) (string, error) {
	body, err := c.exchange(ctx, path, req)
	if err != nil {
		return "", err
	}
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperrors.NewParse("failed to parse generation response", err)
	}
	return parsed.GeneratedText, nil
}

// exchange performs the single POST JSON round trip shared by every
// generation kind
func (c *Client) exchange(ctx context.Context, path string, req Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewParse("failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewTransport("failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewTransport("generation request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransport("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := http.StatusText(resp.StatusCode)
		var parsed errorResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
			detail = parsed.Detail
		}
		c.logger.Warn("backend returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, apperrors.NewTransport(
			fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, detail), nil)
	}

	return body, nil
}
