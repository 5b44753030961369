package models

import (
	"time"
)

// UploadStatus is the lifecycle state of an upload session.
type UploadStatus string

const (
	StatusCreated    UploadStatus = "created"
	StatusInProgress UploadStatus = "in_progress"
	StatusCompleted  UploadStatus = "completed"
	StatusFailed     UploadStatus = "failed"
	StatusCancelled  UploadStatus = "cancelled"
	StatusExpired    UploadStatus = "expired"
)

// Terminal reports whether no further transition is permitted from s.
func (s UploadStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// CanTransition reports whether a session may move from s to target.
// Terminal states never transition out.
func (s UploadStatus) CanTransition(target UploadStatus) bool {
	if s.Terminal() {
		return false
	}
	switch target {
	case StatusInProgress:
		return s == StatusCreated || s == StatusInProgress
	case StatusCompleted, StatusFailed, StatusCancelled:
		return s == StatusCreated || s == StatusInProgress
	case StatusExpired:
		// expiry is triggered externally and applies to any live session
		return true
	}
	return false
}

// UploadSession tracks one resumable-upload attempt from initiation to a
// terminal state. Sessions are never physically deleted; expiry is a status.
type UploadSession struct {
	ID         string `json:"id"`
	TransferID string `json:"transfer_id"`

	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	TotalSize   int64  `json:"total_size"`

	UploadedSize int64 `json:"uploaded_size"`

	Status UploadStatus `json:"status"`

	TenantID   string `json:"tenant_id"`
	FolderID   *int64 `json:"folder_id,omitempty"`
	FolderPath string `json:"folder_path,omitempty"` // raw client input, kept for audit

	AttachmentID string `json:"attachment_id,omitempty"` // set on completed
	ErrorMessage string `json:"error_message,omitempty"` // set on failed

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
