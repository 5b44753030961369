package upload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/DocBridge-Platform/Attachment-Service/internal/classify"
	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
	"github.com/DocBridge-Platform/Attachment-Service/internal/transferstore"
	"github.com/google/uuid"
)

// Event subjects published on session transitions.
const (
	SubjectAttachmentFinalized = "attachments.finalized"
	SubjectUploadCancelled     = "uploads.cancelled"
	SubjectUploadExpired       = "uploads.expired"
)

const maxFolderSegmentLength = 255

// Config carries the upload policy knobs.
type Config struct {
	// ExpiryHorizon is the fixed lifetime granted to a new session.
	ExpiryHorizon time.Duration
	// MaxDeclaredSize rejects initiations above this many bytes. Zero
	// disables the check.
	MaxDeclaredSize int64
	// UploadBaseURL prefixes the client-facing upload address for the
	// external chunk-receiving tier.
	UploadBaseURL string
}

// Service owns the upload session lifecycle: initiation, progress
// tracking, finalization and cancellation.
type Service struct {
	sessions    SessionRepository
	attachments AttachmentRepository
	tenants     TenantDirectory
	resolver    *classify.Resolver
	store       transferstore.Store
	paths       *PathGenerator
	events      EventPublisher
	cfg         Config
	now         func() time.Time
}

func NewService(
	sessions SessionRepository,
	attachments AttachmentRepository,
	tenants TenantDirectory,
	resolver *classify.Resolver,
	store transferstore.Store,
	paths *PathGenerator,
	events EventPublisher,
	cfg Config,
) *Service {
	if cfg.ExpiryHorizon <= 0 {
		cfg.ExpiryHorizon = 24 * time.Hour
	}
	return &Service{
		sessions:    sessions,
		attachments: attachments,
		tenants:     tenants,
		resolver:    resolver,
		store:       store,
		paths:       paths,
		events:      events,
		cfg:         cfg,
		now:         time.Now,
	}
}

// InitiateRequest describes a new upload attempt. FolderSegments is the
// already-parsed ordered path; RawFolderPath keeps the client's original
// string for audit. FolderID short-circuits path resolution when set.
type InitiateRequest struct {
	FileName       string
	ContentType    string
	Size           int64
	TenantID       string
	FolderSegments []string
	RawFolderPath  string
	FolderID       *int64
	InitiatedBy    string
}

// InitiateResult is handed back to the client so it can start streaming
// chunks to the transfer store.
type InitiateResult struct {
	SessionID     string    `json:"session_id"`
	TransferID    string    `json:"transfer_id"`
	UploadAddress string    `json:"upload_address"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// InitiateUpload resolves the target folder (if any) and creates a session
// in Created with a fresh transfer id and a fixed expiry horizon.
func (s *Service) InitiateUpload(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if req.FileName == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if req.Size < 0 {
		return nil, fmt.Errorf("declared size must not be negative")
	}
	if s.cfg.MaxDeclaredSize > 0 && req.Size > s.cfg.MaxDeclaredSize {
		return nil, fmt.Errorf("declared size %d exceeds limit %d", req.Size, s.cfg.MaxDeclaredSize)
	}

	ok, err := s.tenants.TenantExists(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}
	if !ok {
		return nil, ErrTenantNotFound
	}

	folderID := req.FolderID
	if len(req.FolderSegments) > 0 {
		if err := validateSegments(req.FolderSegments); err != nil {
			return nil, err
		}
		folderID, err = s.resolver.Resolve(ctx, req.TenantID, req.InitiatedBy, req.FolderSegments)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve folder path: %w", err)
		}
	}

	now := s.now()
	session := &models.UploadSession{
		ID:           uuid.New().String(),
		TransferID:   uuid.New().String(),
		FileName:     req.FileName,
		ContentType:  req.ContentType,
		TotalSize:    req.Size,
		UploadedSize: 0,
		Status:       models.StatusCreated,
		TenantID:     req.TenantID,
		FolderID:     folderID,
		FolderPath:   req.RawFolderPath,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.cfg.ExpiryHorizon),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create upload session: %w", err)
	}

	return &InitiateResult{
		SessionID:     session.ID,
		TransferID:    session.TransferID,
		UploadAddress: strings.TrimSuffix(s.cfg.UploadBaseURL, "/") + "/" + session.TransferID,
		ExpiresAt:     session.ExpiresAt,
	}, nil
}

// UpdateProgress refreshes the observed byte count for a transfer.
// Unknown transfer ids and stale (lower) counts are silently ignored so
// out-of-order retries stay harmless.
func (s *Service) UpdateProgress(ctx context.Context, transferID string, uploadedBytes int64) error {
	if transferID == "" || uploadedBytes < 0 {
		return nil
	}
	return s.sessions.RecordProgress(ctx, transferID, uploadedBytes)
}

// CancelUpload deletes the transfer store's temp artifacts (best-effort)
// and moves the session to Cancelled.
func (s *Service) CancelUpload(ctx context.Context, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.Status.Terminal() {
		return ErrAlreadyFinalized
	}

	if _, err := s.store.DeleteFile(ctx, session.TransferID); err != nil && !errors.Is(err, transferstore.ErrNotFound) {
		log.Printf("[Upload] cancel %s: temp cleanup failed (continuing): %v", sessionID, err)
	}

	swapped, err := s.sessions.TransitionStatus(ctx, sessionID, models.StatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel session: %w", err)
	}
	if !swapped {
		return ErrAlreadyFinalized
	}

	s.publish(SubjectUploadCancelled, map[string]interface{}{
		"session_id":  session.ID,
		"transfer_id": session.TransferID,
		"tenant_id":   session.TenantID,
	})
	return nil
}

// ExpireSession moves a live session to Expired. The sweep deciding when
// sessions expire runs outside this service; it only delivers verdicts.
func (s *Service) ExpireSession(ctx context.Context, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}

	swapped, err := s.sessions.TransitionStatus(ctx, sessionID, models.StatusExpired)
	if err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	if !swapped {
		// already terminal; expiry verdicts can race with completion
		return nil
	}

	if _, err := s.store.DeleteFile(ctx, session.TransferID); err != nil && !errors.Is(err, transferstore.ErrNotFound) {
		log.Printf("[Upload] expire %s: temp cleanup failed (continuing): %v", sessionID, err)
	}
	return nil
}

// GetSession returns a session by id, ErrSessionNotFound when absent.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.UploadSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ListSessions returns a tenant's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, tenantID string, limit, offset int) ([]*models.UploadSession, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.sessions.ListByTenant(ctx, tenantID, limit, offset)
}

// GetAttachment returns a finalized attachment record by id.
func (s *Service) GetAttachment(ctx context.Context, attachmentID string) (*models.Attachment, error) {
	att, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachment: %w", err)
	}
	if att == nil {
		return nil, ErrAttachmentNotFound
	}
	return att, nil
}

func (s *Service) publish(subject string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, payload); err != nil {
		log.Printf("[Upload] warning: failed to publish %s event: %v", subject, err)
	}
}

func validateSegments(segments []string) error {
	for _, segment := range segments {
		title := strings.TrimSpace(segment)
		if title == "" {
			continue
		}
		if len(title) > maxFolderSegmentLength ||
			strings.ContainsAny(title, "/\\\x00") {
			return fmt.Errorf("%w: segment %q", ErrFolderPathInvalid, segment)
		}
	}
	return nil
}
