// internal/api/response_helpers.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkforge/storyassist/internal/apperrors"
)

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ResponseHelper builds the response envelopes
type ResponseHelper struct{}

// NewResponseHelper creates a response helper
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success answers 200 with the payload
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// Error answers with the status mapped from the error's classification. The
// payload still carries any session state so the shell can render the error
// next to the triggering control without losing the document.
func (rh *ResponseHelper) Error(c *gin.Context, err error, data interface{}) {
	c.JSON(apperrors.HTTPStatus(err), &APIResponse{
		Success:   false,
		Data:      data,
		Error:     err.Error(),
		ErrorType: string(apperrors.TypeOf(err)),
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// BadRequest answers 400 for malformed bodies
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, &APIResponse{
		Success:   false,
		Error:     message,
		ErrorType: string(apperrors.ErrorTypeValidation),
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	if id, exists := c.Get(requestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
