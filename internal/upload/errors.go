package upload

import (
	"errors"
)

// Precondition failures surface to the caller without mutating session
// state. Finalize failures additionally mark the session failed.
var (
	ErrSessionNotFound    = errors.New("upload session not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrFolderPathInvalid  = errors.New("folder path is invalid")
	ErrUploadIncomplete   = errors.New("transfer store has not received the complete file")
	ErrAlreadyFinalized   = errors.New("upload session already finalized")
)
