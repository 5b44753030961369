package transferstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a transfer id does not address any data in
// the backing store.
var ErrNotFound = errors.New("transfer not found")

// UploadStatus is the store's view of how far a transfer has progressed.
type UploadStatus struct {
	TotalSize    int64 `json:"total_size"`
	UploadedSize int64 `json:"uploaded_size"`
	IsComplete   bool  `json:"is_complete"`
}

// Store is the consumed interface of the external resumable-transfer
// store. Chunk reception itself happens outside this service; the core
// only asks for status, the assembled byte stream, metadata, and cleanup.
type Store interface {
	// GetUploadStatus returns bytes received vs. declared total for a
	// transfer, or ErrNotFound.
	GetUploadStatus(ctx context.Context, transferID string) (UploadStatus, error)

	// GetFileStream opens a reader over the fully-received bytes. The
	// caller owns the returned stream and must close it.
	GetFileStream(ctx context.Context, transferID string) (io.ReadCloser, error)

	// DeleteFile removes all temp artifacts for a transfer. It reports
	// whether anything was deleted; callers treat failures as best-effort.
	DeleteFile(ctx context.Context, transferID string) (bool, error)

	// GetMetadata returns the key/value metadata recorded by the
	// receiving tier, or ErrNotFound.
	GetMetadata(ctx context.Context, transferID string) (map[string]string, error)

	// FileExists reports whether the transfer has any stored bytes.
	FileExists(ctx context.Context, transferID string) (bool, error)
}
