package models

import (
	"time"
)

// Classification is a named node in a per-tenant folder tree. Attachments
// hang off the leaf nodes. Within one tenant and one parent, titles are
// unique; the path resolver relies on that to decide find-vs-create.
type Classification struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	ParentID   *int64    `json:"parent_id,omitempty"` // nil = root level
	TenantID   string    `json:"tenant_id"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}
