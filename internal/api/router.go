// internal/api/router.go
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/di"
	"github.com/inkforge/storyassist/internal/services"
)

// SetupRouter configures the editing-core HTTP surface. Services come from
// the container; this function only wires routes.
func SetupRouter(logger *zap.Logger, debugMode bool) (*gin.Engine, error) {
	container := di.GetContainer()

	sessionService, ok := container.Get("sessions").(*services.SessionService)
	if !ok {
		return nil, fmt.Errorf("session service not initialized")
	}
	hub, ok := container.Get("hub").(*Hub)
	if !ok {
		return nil, fmt.Errorf("websocket hub not initialized")
	}

	handler := NewHandler(sessionService, hub, logger)

	if !debugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(cors.Default())

	p := ginprometheus.NewPrometheus("gin")
	p.Use(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// WebSocket state stream
	r.GET("/ws/sessions/:id", handler.SessionWebSocket)

	api := r.Group("/api")
	{
		api.GET("/ws/status", handler.GetWebSocketStatus)

		sessionsGroup := api.Group("/sessions")
		{
			sessionsGroup.POST("", handler.CreateSession)
			sessionsGroup.GET("/:id", handler.GetSession)
			sessionsGroup.DELETE("/:id", handler.CloseSession)
			sessionsGroup.PUT("/:id/content", handler.UpdateContent)
			sessionsGroup.POST("/:id/save", handler.SaveSession)
			sessionsGroup.POST("/:id/selection", handler.UpdateSelection)
			sessionsGroup.POST("/:id/format", handler.Format)

			// generation actions
			sessionsGroup.POST("/:id/write", handler.Write)
			sessionsGroup.POST("/:id/rewrite", handler.Rewrite)
			sessionsGroup.POST("/:id/describe", handler.Describe)
			sessionsGroup.POST("/:id/brainstorm", handler.Brainstorm)

			// story context
			sessionsGroup.PUT("/:id/context", handler.SetContextField)
			sessionsGroup.POST("/:id/context/:element_type/generate", handler.GenerateContextElement)

			// branch explorer
			branchGroup := sessionsGroup.Group("/:id/branches")
			{
				branchGroup.GET("", handler.GetBranches)
				branchGroup.POST("/generate", handler.GenerateBranches)
				branchGroup.POST("/select", handler.SelectBranch)
				branchGroup.POST("/custom", handler.AddCustomBranch)
				branchGroup.POST("/back", handler.BranchBack)
			}
		}
	}

	return r, nil
}
