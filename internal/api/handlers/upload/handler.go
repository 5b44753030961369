package handlers

import (
	"errors"
	"net/http"

	"github.com/DocBridge-Platform/Attachment-Service/internal/upload"
	"github.com/gin-gonic/gin"
)

var service *upload.Service

// SetService wires the upload service consumed by this handler package.
// Must be called once during startup, before routes are registered.
func SetService(s *upload.Service) {
	service = s
}

func userIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// respondError maps the core error kinds onto HTTP statuses. Unknown
// errors become a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, upload.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "upload session not found"})
	case errors.Is(err, upload.ErrAttachmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
	case errors.Is(err, upload.ErrTenantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
	case errors.Is(err, upload.ErrFolderPathInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder path is invalid"})
	case errors.Is(err, upload.ErrUploadIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": "upload is not complete yet"})
	case errors.Is(err, upload.ErrAlreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": "upload session already finalized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
