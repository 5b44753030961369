package api

import (
	"net/http"

	handlers "github.com/DocBridge-Platform/Attachment-Service/internal/api/handlers/upload"
	"github.com/gin-gonic/gin"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

// RegisterRoutes wires the upload surface. authMW guards everything under
// /api except the health probe; pass nil to run the API open (local dev).
func RegisterRoutes(r *gin.Engine, authMW gin.HandlerFunc) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if authMW != nil {
		api.Use(authMW)
	}
	{
		// Upload session lifecycle
		api.POST("/uploads", handlers.InitiateUpload)           // open a session
		api.PATCH("/uploads/progress", handlers.UpdateProgress) // refresh observed bytes
		api.POST("/uploads/:id/complete", handlers.CompleteUpload)
		api.POST("/uploads/:id/cancel", handlers.CancelUpload)

		// Query surface
		api.GET("/uploads", handlers.ListSessions)
		api.GET("/uploads/:id", handlers.GetSession)
		api.GET("/attachments/:id", handlers.GetAttachment)
	}
}
