package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
	"github.com/google/uuid"
)

// ErrDuplicateTitle signals that a node with the same title already exists
// under the same parent for the tenant. Repository implementations map
// their uniqueness violation onto it.
var ErrDuplicateTitle = errors.New("classification title already exists under parent")

// Repository is the persistence surface the resolver needs.
type Repository interface {
	// FindChild looks up a node by title under parentID (nil = root)
	// within a tenant. Returns nil when no node matches.
	FindChild(ctx context.Context, tenantID string, parentID *int64, title string) (*models.Classification, error)
	// Create persists a new node and fills in its numeric id. Returns
	// ErrDuplicateTitle when a concurrent caller won the create race.
	Create(ctx context.Context, node *models.Classification) error
}

// Resolver materializes folder chains from ordered path segments,
// find-or-creating one node per segment.
type Resolver struct {
	repo Repository
	now  func() time.Time
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo, now: time.Now}
}

// Resolve walks segments from the tenant root, descending into existing
// nodes and creating missing ones. Each created node is persisted
// immediately so concurrent callers resolving an overlapping prefix
// observe it. Returns the leaf node's id, or nil when the path has no
// usable segments. The walk is not transactional across segments; a
// partially created chain is valid and reusable.
func (r *Resolver) Resolve(ctx context.Context, tenantID, createdBy string, segments []string) (*int64, error) {
	var parentID *int64

	for _, segment := range segments {
		title := strings.TrimSpace(segment)
		if title == "" {
			continue
		}

		node, err := r.repo.FindChild(ctx, tenantID, parentID, title)
		if err != nil {
			return nil, fmt.Errorf("failed to look up folder %q: %w", title, err)
		}

		if node == nil {
			node = &models.Classification{
				ExternalID: uuid.New().String(),
				Title:      title,
				ParentID:   parentID,
				TenantID:   tenantID,
				CreatedBy:  createdBy,
				CreatedAt:  r.now(),
			}
			err = r.repo.Create(ctx, node)
			if errors.Is(err, ErrDuplicateTitle) {
				// someone else created it between lookup and insert
				node, err = r.repo.FindChild(ctx, tenantID, parentID, title)
				if err == nil && node == nil {
					err = fmt.Errorf("folder %q vanished after duplicate create", title)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("failed to create folder %q: %w", title, err)
			}
		}

		id := node.ID
		parentID = &id
	}

	return parentID, nil
}
