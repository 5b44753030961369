package classify

import (
	"context"
	"testing"

	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository with an optional duplicate-create
// trip wire to simulate a lost race.
type fakeRepo struct {
	nodes      []*models.Classification
	nextID     int64
	duplicates int // number of Create calls to fail with ErrDuplicateTitle
	creates    int
}

func (f *fakeRepo) FindChild(_ context.Context, tenantID string, parentID *int64, title string) (*models.Classification, error) {
	for _, node := range f.nodes {
		if node.TenantID != tenantID || node.Title != title {
			continue
		}
		if (node.ParentID == nil) != (parentID == nil) {
			continue
		}
		if node.ParentID != nil && *node.ParentID != *parentID {
			continue
		}
		return node, nil
	}
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, node *models.Classification) error {
	f.creates++
	if f.duplicates > 0 {
		f.duplicates--
		// a concurrent caller just inserted the same title
		winner := *node
		f.nextID++
		winner.ID = f.nextID
		f.nodes = append(f.nodes, &winner)
		return ErrDuplicateTitle
	}
	if existing, _ := f.FindChild(ctx, node.TenantID, node.ParentID, node.Title); existing != nil {
		return ErrDuplicateTitle
	}
	f.nextID++
	node.ID = f.nextID
	copied := *node
	f.nodes = append(f.nodes, &copied)
	return nil
}

func TestResolveCreatesChain(t *testing.T) {
	repo := &fakeRepo{}
	resolver := NewResolver(repo)

	leaf, err := resolver.Resolve(context.Background(), "tenant-a", "user-1", []string{"Invoices", "2026", "Q3"})
	require.NoError(t, err)
	require.NotNil(t, leaf)
	assert.Len(t, repo.nodes, 3)

	// parent linkage follows segment order
	assert.Nil(t, repo.nodes[0].ParentID)
	require.NotNil(t, repo.nodes[1].ParentID)
	assert.Equal(t, repo.nodes[0].ID, *repo.nodes[1].ParentID)
	require.NotNil(t, repo.nodes[2].ParentID)
	assert.Equal(t, repo.nodes[1].ID, *repo.nodes[2].ParentID)
	assert.Equal(t, repo.nodes[2].ID, *leaf)
}

func TestResolveIsIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	resolver := NewResolver(repo)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "tenant-a", "user-1", []string{"Reports", "Monthly"})
	require.NoError(t, err)

	second, err := resolver.Resolve(ctx, "tenant-a", "user-1", []string{"Reports", "Monthly"})
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Len(t, repo.nodes, 2, "second resolve must not create duplicates")
}

func TestResolveExtendsExistingPrefix(t *testing.T) {
	repo := &fakeRepo{}
	resolver := NewResolver(repo)
	ctx := context.Background()

	a, err := resolver.Resolve(ctx, "tenant-a", "user-1", []string{"A"})
	require.NoError(t, err)
	require.NotNil(t, a)
	require.Len(t, repo.nodes, 1)

	leaf, err := resolver.Resolve(ctx, "tenant-a", "user-1", []string{"A", "B"})
	require.NoError(t, err)
	require.NotNil(t, leaf)

	// exactly one new node, B, parented under the existing A
	require.Len(t, repo.nodes, 2)
	b := repo.nodes[1]
	assert.Equal(t, "B", b.Title)
	require.NotNil(t, b.ParentID)
	assert.Equal(t, *a, *b.ParentID)
	assert.Equal(t, b.ID, *leaf)
}

func TestResolveSkipsEmptySegments(t *testing.T) {
	repo := &fakeRepo{}
	resolver := NewResolver(repo)

	leaf, err := resolver.Resolve(context.Background(), "tenant-a", "user-1", []string{"  ", "Docs", "", "Legal", "\t"})
	require.NoError(t, err)
	require.NotNil(t, leaf)
	assert.Len(t, repo.nodes, 2)
	assert.Equal(t, "Docs", repo.nodes[0].Title)
	assert.Equal(t, "Legal", repo.nodes[1].Title)
}

func TestResolveEmptyPathReturnsNoFolder(t *testing.T) {
	repo := &fakeRepo{}
	resolver := NewResolver(repo)

	leaf, err := resolver.Resolve(context.Background(), "tenant-a", "user-1", []string{"", "   "})
	require.NoError(t, err)
	assert.Nil(t, leaf)
	assert.Empty(t, repo.nodes)

	leaf, err = resolver.Resolve(context.Background(), "tenant-a", "user-1", nil)
	require.NoError(t, err)
	assert.Nil(t, leaf)
}

func TestResolveTrimsSegmentWhitespace(t *testing.T) {
	repo := &fakeRepo{}
	resolver := NewResolver(repo)

	_, err := resolver.Resolve(context.Background(), "tenant-a", "user-1", []string{"  Archive  "})
	require.NoError(t, err)
	require.Len(t, repo.nodes, 1)
	assert.Equal(t, "Archive", repo.nodes[0].Title)
}

func TestResolveRecoversFromDuplicateCreate(t *testing.T) {
	repo := &fakeRepo{duplicates: 1}
	resolver := NewResolver(repo)

	leaf, err := resolver.Resolve(context.Background(), "tenant-a", "user-1", []string{"Shared"})
	require.NoError(t, err)
	require.NotNil(t, leaf)
	assert.Len(t, repo.nodes, 1, "loser must adopt the winner's node")
	assert.Equal(t, repo.nodes[0].ID, *leaf)
}

func TestResolveIsolatesTenants(t *testing.T) {
	repo := &fakeRepo{}
	resolver := NewResolver(repo)
	ctx := context.Background()

	a, err := resolver.Resolve(ctx, "tenant-a", "user-1", []string{"Docs"})
	require.NoError(t, err)
	b, err := resolver.Resolve(ctx, "tenant-b", "user-2", []string{"Docs"})
	require.NoError(t, err)

	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, *a, *b)
	assert.Len(t, repo.nodes, 2)
}
