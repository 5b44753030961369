package infrastructure

import (
	"context"
	"database/sql"

	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
)

// AttachmentRepo persists the permanent records produced by finalization.
type AttachmentRepo struct {
	Db *sql.DB
}

func (p *AttachmentRepo) Create(ctx context.Context, attachment *models.Attachment) error {
	query := `
  INSERT INTO attachments
      (id, tenant_id, folder_id, stored_name, original_name, storage_path,
       content_type, file_size, digest, transfer_id, description, created_at)
  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
  `
	_, err := p.Db.ExecContext(ctx, query,
		attachment.ID,
		attachment.TenantID,
		attachment.FolderID,
		attachment.StoredName,
		attachment.OriginalName,
		attachment.StoragePath,
		attachment.ContentType,
		attachment.FileSize,
		attachment.Digest,
		attachment.TransferID,
		nullableString(attachment.Description),
		attachment.CreatedAt,
	)
	return err
}

func (p *AttachmentRepo) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	query := `
  SELECT id, tenant_id, folder_id, stored_name, original_name, storage_path,
         content_type, file_size, digest, transfer_id, description, created_at
  FROM attachments WHERE id = $1
  `
	var (
		attachment  models.Attachment
		folderID    sql.NullInt64
		description sql.NullString
	)
	err := p.Db.QueryRowContext(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.TenantID,
		&folderID,
		&attachment.StoredName,
		&attachment.OriginalName,
		&attachment.StoragePath,
		&attachment.ContentType,
		&attachment.FileSize,
		&attachment.Digest,
		&attachment.TransferID,
		&description,
		&attachment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if folderID.Valid {
		attachment.FolderID = &folderID.Int64
	}
	attachment.Description = description.String
	return &attachment, nil
}
