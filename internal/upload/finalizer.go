package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
	"github.com/DocBridge-Platform/Attachment-Service/internal/transferstore"
	"github.com/google/uuid"
)

// copyBufferSize bounds finalize memory use per transfer.
const copyBufferSize = 32 * 1024

// CompleteResult is returned to the caller after a successful finalize.
type CompleteResult struct {
	AttachmentID string `json:"attachment_id"`
	FileName     string `json:"file_name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

// CompleteUpload converts a finished transfer into a permanent attachment.
// Precondition failures (unknown session, incomplete transfer, missing
// stream) leave the session untouched. Once the session is claimed for
// finalization, any error moves it to Failed with the cause recorded, and
// the error still surfaces to the caller.
func (s *Service) CompleteUpload(ctx context.Context, sessionID, transferID, description string) (*CompleteResult, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.TransferID != transferID {
		return nil, ErrSessionNotFound
	}
	if session.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}

	status, err := s.store.GetUploadStatus(ctx, transferID)
	if err != nil {
		if errors.Is(err, transferstore.ErrNotFound) {
			return nil, s.missingTransferOutcome(ctx, sessionID)
		}
		return nil, fmt.Errorf("failed to query transfer store: %w", err)
	}
	if !status.IsComplete {
		return nil, ErrUploadIncomplete
	}

	stream, err := s.store.GetFileStream(ctx, transferID)
	if err != nil {
		if errors.Is(err, transferstore.ErrNotFound) {
			return nil, s.missingTransferOutcome(ctx, sessionID)
		}
		return nil, fmt.Errorf("failed to open transfer stream: %w", err)
	}
	defer stream.Close()

	claimed, err := s.sessions.ClaimFinalize(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim session for finalize: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadyFinalized
	}

	attachment, err := s.finalize(ctx, session, stream, description)
	if err != nil {
		if markErr := s.sessions.MarkFailed(ctx, sessionID, err.Error()); markErr != nil {
			log.Printf("[Upload] failed to record failure on session %s: %v", sessionID, markErr)
		}
		return nil, err
	}

	return &CompleteResult{
		AttachmentID: attachment.ID,
		FileName:     attachment.OriginalName,
		Size:         attachment.FileSize,
		ContentType:  attachment.ContentType,
	}, nil
}

// missingTransferOutcome classifies a transfer the store no longer knows.
// A concurrent duplicate completion can lose the race against the winner's
// temp cleanup; re-reading the session tells a finished upload apart from
// one that never arrived.
func (s *Service) missingTransferOutcome(ctx context.Context, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err == nil && session != nil && session.Status.Terminal() {
		return ErrAlreadyFinalized
	}
	return ErrUploadIncomplete
}

// finalize streams the temp bytes into permanent storage while computing
// the SHA-256 digest, creates the attachment record, completes the session
// and cleans up the transfer store. The three stores share no transaction;
// this order keeps the worst crash outcome at an orphaned file, never a
// completed session pointing at missing bytes.
func (s *Service) finalize(ctx context.Context, session *models.UploadSession, stream io.Reader, description string) (*models.Attachment, error) {
	now := s.now()
	ext := strings.ToLower(path.Ext(session.FileName))
	storedName := uuid.New().String() + ext
	storagePath := s.paths.AttachmentPath(session.TenantID, session.FolderID, now, storedName)

	written, digest, err := s.writeAndDigest(ctx, storagePath, stream)
	if err != nil {
		return nil, fmt.Errorf("failed to copy transfer %s to permanent storage: %w", session.TransferID, err)
	}

	attachment := &models.Attachment{
		ID:           uuid.New().String(),
		TenantID:     session.TenantID,
		FolderID:     session.FolderID,
		StoredName:   storedName,
		OriginalName: session.FileName,
		StoragePath:  storagePath,
		ContentType:  session.ContentType,
		FileSize:     written,
		Digest:       digest,
		TransferID:   session.TransferID,
		Description:  description,
		CreatedAt:    now,
	}

	if err := s.attachments.Create(ctx, attachment); err != nil {
		if rmErr := os.Remove(filepath.FromSlash(storagePath)); rmErr != nil {
			log.Printf("[Upload] warning: failed to remove file after record failure: %v", rmErr)
		}
		return nil, fmt.Errorf("failed to create attachment record: %w", err)
	}

	if err := s.sessions.MarkCompleted(ctx, session.ID, attachment.ID); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	if _, err := s.store.DeleteFile(ctx, session.TransferID); err != nil && !errors.Is(err, transferstore.ErrNotFound) {
		log.Printf("[Upload] warning: temp cleanup for transfer %s failed: %v", session.TransferID, err)
	}

	s.publish(SubjectAttachmentFinalized, map[string]interface{}{
		"attachment_id": attachment.ID,
		"session_id":    session.ID,
		"tenant_id":     session.TenantID,
		"storage_path":  attachment.StoragePath,
		"size":          attachment.FileSize,
		"digest":        attachment.Digest,
	})

	return attachment, nil
}

// writeAndDigest copies the stream into storagePath in fixed-size chunks,
// feeding every chunk into a running SHA-256 so the recorded digest
// matches exactly the bytes landed on disk. The context is checked between
// chunks; a partial file is removed on any failure.
func (s *Service) writeAndDigest(ctx context.Context, storagePath string, src io.Reader) (int64, string, error) {
	osPath := filepath.FromSlash(storagePath)
	if err := os.MkdirAll(filepath.Dir(osPath), 0o755); err != nil {
		return 0, "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	dst, err := os.OpenFile(osPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create destination file: %w", err)
	}

	hasher := sha256.New()
	buf := make([]byte, copyBufferSize)
	var written int64

	fail := func(cause error) (int64, string, error) {
		dst.Close()
		if rmErr := os.Remove(osPath); rmErr != nil {
			log.Printf("[Upload] warning: failed to remove partial file %s: %v", osPath, rmErr)
		}
		return written, "", cause
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return fail(writeErr)
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fail(readErr)
		}
	}

	if err := dst.Close(); err != nil {
		if rmErr := os.Remove(osPath); rmErr != nil {
			log.Printf("[Upload] warning: failed to remove partial file %s: %v", osPath, rmErr)
		}
		return written, "", err
	}

	return written, hex.EncodeToString(hasher.Sum(nil)), nil
}
