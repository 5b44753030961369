package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type progressRequest struct {
	TransferID    string `json:"transfer_id" binding:"required"`
	UploadedBytes int64  `json:"uploaded_bytes"`
}

// UpdateProgress refreshes a session's observed byte count. Unknown
// transfer ids are acknowledged without effect so retrying receivers
// never see spurious failures.
func UpdateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if err := service.UpdateProgress(c.Request.Context(), req.TransferID, req.UploadedBytes); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
