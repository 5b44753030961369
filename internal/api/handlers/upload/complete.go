package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type completeRequest struct {
	TransferID  string `json:"transfer_id" binding:"required"`
	Description string `json:"description"`
}

// CompleteUpload finalizes a finished transfer into a permanent
// attachment. Failures during finalization leave the session in Failed
// with the cause recorded, queryable via GET /api/uploads/:id.
func CompleteUpload(c *gin.Context) {
	sessionID := c.Param("id")

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := service.CompleteUpload(c.Request.Context(), sessionID, req.TransferID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
