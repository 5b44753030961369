package handlers

import (
	"net/http"

	"github.com/DocBridge-Platform/Attachment-Service/internal/upload"
	"github.com/gin-gonic/gin"
)

type initiateRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	TenantID    string `json:"tenant_id" binding:"required"`
	FolderPath  string `json:"folder_path"`
	FolderID    *int64 `json:"folder_id"`
}

// InitiateUpload opens a new upload session. The response carries the
// transfer id and the address the client streams its chunks to.
func InitiateUpload(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	userID, _ := userIDFromContext(c)

	result, err := service.InitiateUpload(c.Request.Context(), upload.InitiateRequest{
		FileName:       req.FileName,
		ContentType:    req.ContentType,
		Size:           req.Size,
		TenantID:       req.TenantID,
		FolderSegments: ParseFolderPath(req.FolderPath),
		RawFolderPath:  req.FolderPath,
		FolderID:       req.FolderID,
		InitiatedBy:    userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
