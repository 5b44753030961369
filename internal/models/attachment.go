package models

import (
	"time"
)

// Attachment is the permanent record of a finalized upload. The storage
// path is unique and points to bytes whose SHA-256 equals Digest at the
// moment of creation.
type Attachment struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	FolderID     *int64    `json:"folder_id,omitempty"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	StoragePath  string    `json:"storage_path"`
	ContentType  string    `json:"content_type"`
	FileSize     int64     `json:"file_size"`
	Digest       string    `json:"digest"` // lowercase hex SHA-256
	TransferID   string    `json:"transfer_id"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
