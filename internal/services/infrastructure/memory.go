package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/DocBridge-Platform/Attachment-Service/internal/classify"
	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
	"github.com/DocBridge-Platform/Attachment-Service/internal/upload"
)

// MemoryStore is an in-process implementation of the session, folder,
// attachment and tenant stores. It backs tests and local development; the
// mutex gives it the same atomicity the SQL statements give Postgres.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*models.UploadSession
	byTransfer  map[string]string
	claimed     map[string]bool
	attachments map[string]*models.Attachment
	nodes       []*models.Classification
	nextNodeID  int64
	tenants     map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*models.UploadSession),
		byTransfer:  make(map[string]string),
		claimed:     make(map[string]bool),
		attachments: make(map[string]*models.Attachment),
		tenants:     make(map[string]bool),
	}
}

// RegisterTenant adds a tenant id to the directory.
func (m *MemoryStore) RegisterTenant(tenantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[tenantID] = true
}

func (m *MemoryStore) TenantExists(_ context.Context, tenantID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tenants[tenantID], nil
}

func (m *MemoryStore) Create(_ context.Context, session *models.UploadSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	m.byTransfer[session.TransferID] = session.ID
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*models.UploadSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (m *MemoryStore) RecordProgress(_ context.Context, transferID string, uploadedBytes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byTransfer[transferID]
	if !ok {
		return nil
	}
	session := m.sessions[id]
	if session.Status != models.StatusCreated && session.Status != models.StatusInProgress {
		return nil
	}
	if uploadedBytes > session.UploadedSize {
		if session.TotalSize > 0 && uploadedBytes > session.TotalSize {
			uploadedBytes = session.TotalSize
		}
		session.UploadedSize = uploadedBytes
	}
	if session.Status == models.StatusCreated {
		session.Status = models.StatusInProgress
	}
	return nil
}

func (m *MemoryStore) ClaimFinalize(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok || m.claimed[id] || session.Status.Terminal() {
		return false, nil
	}
	m.claimed[id] = true
	return true, nil
}

func (m *MemoryStore) MarkCompleted(_ context.Context, id, attachmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok || !session.Status.CanTransition(models.StatusCompleted) {
		return nil
	}
	session.Status = models.StatusCompleted
	session.AttachmentID = attachmentID
	return nil
}

func (m *MemoryStore) MarkFailed(_ context.Context, id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok || !session.Status.CanTransition(models.StatusFailed) {
		return nil
	}
	session.Status = models.StatusFailed
	session.ErrorMessage = message
	return nil
}

func (m *MemoryStore) TransitionStatus(_ context.Context, id string, target models.UploadStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok || !session.Status.CanTransition(target) {
		return false, nil
	}
	session.Status = target
	return true, nil
}

func (m *MemoryStore) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*models.UploadSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*models.UploadSession
	for _, session := range m.sessions {
		if session.TenantID == tenantID {
			copied := *session
			all = append(all, &copied)
		}
	}
	// newest first, matching the SQL ordering
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStore) CreateAttachment(_ context.Context, attachment *models.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *attachment
	m.attachments[attachment.ID] = &copied
	return nil
}

func (m *MemoryStore) GetAttachment(_ context.Context, id string) (*models.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	attachment, ok := m.attachments[id]
	if !ok {
		return nil, nil
	}
	copied := *attachment
	return &copied, nil
}

// Attachments adapts the store to upload.AttachmentRepository, whose
// method set collides with the session repository's.
func (m *MemoryStore) Attachments() upload.AttachmentRepository {
	return &memoryAttachments{store: m}
}

type memoryAttachments struct {
	store *MemoryStore
}

func (a *memoryAttachments) Create(ctx context.Context, attachment *models.Attachment) error {
	return a.store.CreateAttachment(ctx, attachment)
}

func (a *memoryAttachments) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	return a.store.GetAttachment(ctx, id)
}

func (m *MemoryStore) FindChild(_ context.Context, tenantID string, parentID *int64, title string) (*models.Classification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node := m.findChildLocked(tenantID, parentID, title)
	if node == nil {
		return nil, nil
	}
	copied := *node
	return &copied, nil
}

// Classifications adapts the store to classify.Repository.
func (m *MemoryStore) Classifications() classify.Repository {
	return &memoryClassifications{store: m}
}

type memoryClassifications struct {
	store *MemoryStore
}

func (c *memoryClassifications) FindChild(ctx context.Context, tenantID string, parentID *int64, title string) (*models.Classification, error) {
	return c.store.FindChild(ctx, tenantID, parentID, title)
}

func (c *memoryClassifications) Create(_ context.Context, node *models.Classification) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if existing := c.store.findChildLocked(node.TenantID, node.ParentID, node.Title); existing != nil {
		return classify.ErrDuplicateTitle
	}
	c.store.nextNodeID++
	node.ID = c.store.nextNodeID
	copied := *node
	c.store.nodes = append(c.store.nodes, &copied)
	return nil
}

func (m *MemoryStore) findChildLocked(tenantID string, parentID *int64, title string) *models.Classification {
	for _, node := range m.nodes {
		if node.TenantID != tenantID || node.Title != title {
			continue
		}
		if (node.ParentID == nil) != (parentID == nil) {
			continue
		}
		if node.ParentID != nil && *node.ParentID != *parentID {
			continue
		}
		return node
	}
	return nil
}

// AttachmentCount reports how many attachment records exist, for tests.
func (m *MemoryStore) AttachmentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attachments)
}

// NodeCount reports how many folder nodes exist, for tests.
func (m *MemoryStore) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

var (
	_ upload.SessionRepository = (*MemoryStore)(nil)
	_ upload.TenantDirectory   = (*MemoryStore)(nil)
)
