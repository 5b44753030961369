package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DocBridge-Platform/Attachment-Service/internal/classify"
	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// ClassificationRepo persists the per-tenant folder tree.
type ClassificationRepo struct {
	Db *sql.DB
}

func (p *ClassificationRepo) FindChild(ctx context.Context, tenantID string, parentID *int64, title string) (*models.Classification, error) {
	query := `
  SELECT id, external_id, title, parent_id, tenant_id, created_by, created_at
  FROM classifications
  WHERE tenant_id = $1 AND title = $2 AND parent_id IS NOT DISTINCT FROM $3
  `
	var (
		node      models.Classification
		parent    sql.NullInt64
		createdBy sql.NullString
	)
	err := p.Db.QueryRowContext(ctx, query, tenantID, title, parentID).Scan(
		&node.ID,
		&node.ExternalID,
		&node.Title,
		&parent,
		&node.TenantID,
		&createdBy,
		&node.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		node.ParentID = &parent.Int64
	}
	node.CreatedBy = createdBy.String
	return &node, nil
}

// Create persists a node and fills in its generated id. A
// losing racer gets classify.ErrDuplicateTitle and is expected to re-read.
func (p *ClassificationRepo) Create(ctx context.Context, node *models.Classification) error {
	query := `
  INSERT INTO classifications (external_id, title, parent_id, tenant_id, created_by, created_at)
  VALUES ($1, $2, $3, $4, $5, $6)
  RETURNING id
  `
	err := p.Db.QueryRowContext(ctx, query,
		node.ExternalID,
		node.Title,
		node.ParentID,
		node.TenantID,
		nullableString(node.CreatedBy),
		node.CreatedAt,
	).Scan(&node.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return classify.ErrDuplicateTitle
		}
		return err
	}
	return nil
}
