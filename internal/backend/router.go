// internal/backend/router.go
package backend

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

// SetupRouter wires the generation backend's HTTP surface
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	p := ginprometheus.NewPrometheus("gin")
	p.Use(r)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "StoryAssist backend is running"})
	})

	generate := r.Group("/generate")
	{
		generate.POST("/write", h.Write)
		generate.POST("/rewrite", h.Rewrite)
		generate.POST("/describe", h.Describe)
		generate.POST("/brainstorm", h.Brainstorm)
		generate.POST("/context/:element_type", h.ContextElement)
		generate.POST("/story-branches", h.StoryBranches)
	}

	documents := r.Group("/documents")
	{
		documents.POST("/", h.CreateDocument)
		documents.GET("/", h.ListDocuments)
		documents.GET("/:doc_id", h.GetDocument)
		documents.PUT("/:doc_id", h.UpdateDocument)
		documents.DELETE("/:doc_id", h.DeleteDocument)
	}

	bible := r.Group("/story-bible")
	{
		bible.POST("/", h.CreateStoryBibleItem)
		bible.GET("/:doc_id", h.GetStoryBible)
		bible.GET("/:doc_id/:category", h.GetStoryBibleItem)
	}

	return r
}
