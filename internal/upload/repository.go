package upload

import (
	"context"

	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
)

// SessionRepository persists upload sessions. Lookups return nil (not an
// error) when no row matches; callers decide whether that is a failure.
type SessionRepository interface {
	Create(ctx context.Context, session *models.UploadSession) error
	GetByID(ctx context.Context, id string) (*models.UploadSession, error)

	// RecordProgress sets the observed uploaded size for a live session,
	// clamped so it never decreases and never exceeds the declared total,
	// and promotes Created to InProgress. Unknown transfer ids and
	// terminal sessions are a silent no-op.
	RecordProgress(ctx context.Context, transferID string, uploadedBytes int64) error

	// ClaimFinalize atomically claims the session for finalization while
	// its status is still Created or InProgress. Exactly one concurrent
	// caller gets true; everyone else gets false.
	ClaimFinalize(ctx context.Context, id string) (bool, error)

	// MarkCompleted moves a claimed session to Completed and records the
	// attachment it produced.
	MarkCompleted(ctx context.Context, id, attachmentID string) error

	// MarkFailed moves a claimed session to Failed and records the cause.
	MarkFailed(ctx context.Context, id, message string) error

	// TransitionStatus performs a guarded status swap, accepting only
	// source states for which models.UploadStatus.CanTransition allows
	// the target. Returns false when the swap was rejected.
	TransitionStatus(ctx context.Context, id string, target models.UploadStatus) (bool, error)

	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*models.UploadSession, error)
}

// AttachmentRepository persists the permanent records created on finalize.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, id string) (*models.Attachment, error)
}

// TenantDirectory answers whether a tenant id is known to the platform.
type TenantDirectory interface {
	TenantExists(ctx context.Context, tenantID string) (bool, error)
}

// EventPublisher pushes lifecycle events onto the message bus. A nil
// publisher disables eventing.
type EventPublisher interface {
	Publish(subject string, payload interface{}) error
}
