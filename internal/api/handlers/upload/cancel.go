package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CancelUpload abandons a live session and cleans up its temp artifacts.
func CancelUpload(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
		return
	}

	if err := service.CancelUpload(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "upload cancelled",
		"session_id": sessionID,
	})
}
