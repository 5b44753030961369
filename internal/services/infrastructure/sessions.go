package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
	"github.com/lib/pq"
)

// SessionRepo persists upload sessions.
type SessionRepo struct {
	Db *sql.DB
}

const sessionColumns = `id, transfer_id, file_name, content_type, total_size, uploaded_size,
	status, tenant_id, folder_id, folder_path, attachment_id, error_message, created_at, expires_at`

func (p *SessionRepo) Create(ctx context.Context, session *models.UploadSession) error {
	query := `
  INSERT INTO upload_sessions
      (id, transfer_id, file_name, content_type, total_size, uploaded_size,
       status, tenant_id, folder_id, folder_path, created_at, expires_at)
  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
  `
	_, err := p.Db.ExecContext(ctx, query,
		session.ID,
		session.TransferID,
		session.FileName,
		session.ContentType,
		session.TotalSize,
		session.UploadedSize,
		string(session.Status),
		session.TenantID,
		session.FolderID,
		nullableString(session.FolderPath),
		session.CreatedAt,
		session.ExpiresAt,
	)
	return err
}

func (p *SessionRepo) GetByID(ctx context.Context, id string) (*models.UploadSession, error) {
	row := p.Db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM upload_sessions WHERE id = $1`, id)
	return scanSession(row)
}

// RecordProgress clamps the observed size so retries arriving out of order
// never decrease it, caps it at the declared total, and promotes Created
// to InProgress. Terminal sessions and unknown transfers are untouched.
func (p *SessionRepo) RecordProgress(ctx context.Context, transferID string, uploadedBytes int64) error {
	query := `
  UPDATE upload_sessions
  SET uploaded_size = GREATEST(uploaded_size,
                               LEAST($2, CASE WHEN total_size > 0 THEN total_size ELSE $2 END)),
      status = CASE WHEN status = $3 THEN $4 ELSE status END
  WHERE transfer_id = $1 AND status IN ($3, $4)
  `
	_, err := p.Db.ExecContext(ctx, query, transferID, uploadedBytes,
		string(models.StatusCreated), string(models.StatusInProgress))
	return err
}

func (p *SessionRepo) ClaimFinalize(ctx context.Context, id string) (bool, error) {
	query := `
  UPDATE upload_sessions
  SET finalize_claimed = true
  WHERE id = $1 AND finalize_claimed = false AND status IN ($2, $3)
  `
	res, err := p.Db.ExecContext(ctx, query, id,
		string(models.StatusCreated), string(models.StatusInProgress))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *SessionRepo) MarkCompleted(ctx context.Context, id, attachmentID string) error {
	query := `
  UPDATE upload_sessions
  SET status = $2, attachment_id = $3
  WHERE id = $1 AND status IN ($4, $5)
  `
	res, err := p.Db.ExecContext(ctx, query, id, string(models.StatusCompleted), attachmentID,
		string(models.StatusCreated), string(models.StatusInProgress))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("session %s is not in a completable state", id)
	}
	return nil
}

func (p *SessionRepo) MarkFailed(ctx context.Context, id, message string) error {
	query := `
  UPDATE upload_sessions
  SET status = $2, error_message = $3
  WHERE id = $1 AND status IN ($4, $5)
  `
	_, err := p.Db.ExecContext(ctx, query, id, string(models.StatusFailed), message,
		string(models.StatusCreated), string(models.StatusInProgress))
	return err
}

// TransitionStatus swaps the status only from sources the state machine
// allows for the target, so terminal sessions can never be resurrected.
func (p *SessionRepo) TransitionStatus(ctx context.Context, id string, target models.UploadStatus) (bool, error) {
	sources := transitionSources(target)
	if len(sources) == 0 {
		return false, fmt.Errorf("no valid source state for target %s", target)
	}

	res, err := p.Db.ExecContext(ctx,
		`UPDATE upload_sessions SET status = $2 WHERE id = $1 AND status = ANY($3)`,
		id, string(target), pq.Array(sources))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *SessionRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*models.UploadSession, error) {
	rows, err := p.Db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM upload_sessions
		 WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.UploadSession
	for rows.Next() {
		session, err := scanSessionRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func transitionSources(target models.UploadStatus) []string {
	all := []models.UploadStatus{
		models.StatusCreated, models.StatusInProgress, models.StatusCompleted,
		models.StatusFailed, models.StatusCancelled, models.StatusExpired,
	}
	var sources []string
	for _, s := range all {
		if s.CanTransition(target) {
			sources = append(sources, string(s))
		}
	}
	return sources
}

func scanSession(row *sql.Row) (*models.UploadSession, error) {
	session, err := scanSessionRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return session, err
}

func scanSessionRow(scan func(dest ...interface{}) error) (*models.UploadSession, error) {
	var (
		session      models.UploadSession
		status       string
		folderID     sql.NullInt64
		folderPath   sql.NullString
		attachmentID sql.NullString
		errorMessage sql.NullString
	)
	err := scan(
		&session.ID,
		&session.TransferID,
		&session.FileName,
		&session.ContentType,
		&session.TotalSize,
		&session.UploadedSize,
		&status,
		&session.TenantID,
		&folderID,
		&folderPath,
		&attachmentID,
		&errorMessage,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	session.Status = models.UploadStatus(status)
	if folderID.Valid {
		session.FolderID = &folderID.Int64
	}
	session.FolderPath = folderPath.String
	session.AttachmentID = attachmentID.String
	session.ErrorMessage = errorMessage.String
	return &session, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
