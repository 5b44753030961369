package upload_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DocBridge-Platform/Attachment-Service/internal/classify"
	"github.com/DocBridge-Platform/Attachment-Service/internal/models"
	"github.com/DocBridge-Platform/Attachment-Service/internal/services/infrastructure"
	"github.com/DocBridge-Platform/Attachment-Service/internal/transferstore"
	"github.com/DocBridge-Platform/Attachment-Service/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedTransfer(env *testEnv, transferID string, content []byte) {
	env.transfers.Put(transferID, content, transferstore.UploadStatus{
		TotalSize:    int64(len(content)),
		UploadedSize: int64(len(content)),
		IsComplete:   true,
	}, nil)
}

func TestCompleteUploadFinalizes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	content := []byte("the quick brown fox jumps over the lazy dog")

	result := env.initiate(t, upload.InitiateRequest{
		Size:           int64(len(content)),
		FileName:       "fox.txt",
		FolderSegments: []string{"Animals"},
	})
	completedTransfer(env, result.TransferID, content)

	completed, err := env.svc.CompleteUpload(ctx, result.SessionID, result.TransferID, "a note")
	require.NoError(t, err)
	assert.Equal(t, "fox.txt", completed.FileName)
	assert.Equal(t, int64(len(content)), completed.Size)
	assert.Equal(t, "application/pdf", completed.ContentType)

	session, err := env.svc.GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, session.Status)
	assert.Equal(t, completed.AttachmentID, session.AttachmentID)

	attachment, err := env.svc.GetAttachment(ctx, completed.AttachmentID)
	require.NoError(t, err)
	assert.Equal(t, "fox.txt", attachment.OriginalName)
	assert.Equal(t, ".txt", filepath.Ext(attachment.StoredName))
	assert.Equal(t, "a note", attachment.Description)
	require.NotNil(t, attachment.FolderID)

	// digest integrity: re-hashing the stored bytes matches the record
	stored, err := os.ReadFile(filepath.FromSlash(attachment.StoragePath))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
	sum := sha256.Sum256(stored)
	assert.Equal(t, hex.EncodeToString(sum[:]), attachment.Digest)

	// temp artifacts are gone
	exists, err := env.transfers.FileExists(ctx, result.TransferID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCompleteUploadIncompleteTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result := env.initiate(t, upload.InitiateRequest{Size: 100})
	env.transfers.Put(result.TransferID, []byte("partial"), transferstore.UploadStatus{
		TotalSize:    100,
		UploadedSize: 7,
		IsComplete:   false,
	}, nil)

	before, err := env.svc.GetSession(ctx, result.SessionID)
	require.NoError(t, err)

	_, err = env.svc.CompleteUpload(ctx, result.SessionID, result.TransferID, "")
	assert.ErrorIs(t, err, upload.ErrUploadIncomplete)

	after, err := env.svc.GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status, "precondition failure must not mutate the session")
	assert.Empty(t, after.ErrorMessage)
}

func TestCompleteUploadMissingTransfer(t *testing.T) {
	env := newTestEnv(t)
	result := env.initiate(t, upload.InitiateRequest{Size: 10})

	// nothing was ever received by the transfer store
	_, err := env.svc.CompleteUpload(context.Background(), result.SessionID, result.TransferID, "")
	assert.ErrorIs(t, err, upload.ErrUploadIncomplete)
}

func TestCompleteUploadWithoutProgressUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	content := make([]byte, 128*1024+17) // spans several copy chunks
	for i := range content {
		content[i] = byte(i % 251)
	}

	// the session never saw an UpdateProgress call, but the store is done
	result := env.initiate(t, upload.InitiateRequest{Size: int64(len(content)), FileName: "blob.bin"})
	completedTransfer(env, result.TransferID, content)

	completed, err := env.svc.CompleteUpload(ctx, result.SessionID, result.TransferID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), completed.Size)

	attachment, err := env.svc.GetAttachment(ctx, completed.AttachmentID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), attachment.FileSize)

	stored, err := os.ReadFile(filepath.FromSlash(attachment.StoragePath))
	require.NoError(t, err)
	sum := sha256.Sum256(stored)
	assert.Equal(t, hex.EncodeToString(sum[:]), attachment.Digest)
}

func TestCompleteUploadUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.CompleteUpload(context.Background(), "missing", "whatever", "")
	assert.ErrorIs(t, err, upload.ErrSessionNotFound)
}

func TestCompleteUploadTransferIDMismatch(t *testing.T) {
	env := newTestEnv(t)
	result := env.initiate(t, upload.InitiateRequest{Size: 10})

	_, err := env.svc.CompleteUpload(context.Background(), result.SessionID, "some-other-transfer", "")
	assert.ErrorIs(t, err, upload.ErrSessionNotFound)
}

func TestCompleteUploadTerminalSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result := env.initiate(t, upload.InitiateRequest{Size: 3})
	completedTransfer(env, result.TransferID, []byte("abc"))

	_, err := env.svc.CompleteUpload(ctx, result.SessionID, result.TransferID, "")
	require.NoError(t, err)

	_, err = env.svc.CompleteUpload(ctx, result.SessionID, result.TransferID, "")
	assert.ErrorIs(t, err, upload.ErrAlreadyFinalized)
}

func TestCompleteUploadConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	content := []byte("raced bytes")
	result := env.initiate(t, upload.InitiateRequest{Size: int64(len(content))})
	completedTransfer(env, result.TransferID, content)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.CompleteUpload(ctx, result.SessionID, result.TransferID, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, upload.ErrAlreadyFinalized)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one finalize may win")
	assert.Equal(t, 1, env.store.AttachmentCount(), "exactly one attachment may be created")
}

type failingAttachments struct{}

func (failingAttachments) Create(context.Context, *models.Attachment) error {
	return errors.New("attachments table unavailable")
}

func (failingAttachments) GetByID(context.Context, string) (*models.Attachment, error) {
	return nil, nil
}

func TestCompleteUploadFailureMarksSessionFailed(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	store.RegisterTenant(testTenant)
	transfers := transferstore.NewMemoryStore()
	svc := upload.NewService(
		store, failingAttachments{}, store,
		classify.NewResolver(store.Classifications()),
		transfers,
		upload.NewPathGenerator(t.TempDir(), 16),
		nil,
		upload.Config{ExpiryHorizon: time.Hour},
	)
	ctx := context.Background()

	result, err := svc.InitiateUpload(ctx, upload.InitiateRequest{
		FileName: "doomed.txt",
		TenantID: testTenant,
		Size:     3,
	})
	require.NoError(t, err)
	transfers.Put(result.TransferID, []byte("abc"), transferstore.UploadStatus{
		TotalSize: 3, UploadedSize: 3, IsComplete: true,
	}, nil)

	_, err = svc.CompleteUpload(ctx, result.SessionID, result.TransferID, "")
	require.Error(t, err)

	session, getErr := svc.GetSession(ctx, result.SessionID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusFailed, session.Status)
	assert.Contains(t, session.ErrorMessage, "attachments table unavailable")
}
