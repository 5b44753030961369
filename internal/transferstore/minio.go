package transferstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
)

// Object layout written by the external receiving tier:
//
//	transfers/<transferId>/data        assembled bytes
//	transfers/<transferId>/status.json UploadStatus document
//
// User metadata from the initial creation hook rides on the data object.
const (
	transferPrefix   = "transfers/"
	dataObjectName   = "data"
	statusObjectName = "status.json"
)

// MinioStore adapts a MinIO bucket as the resumable-transfer store.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

func objectKey(transferID, name string) string {
	return transferPrefix + transferID + "/" + name
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

func (s *MinioStore) GetUploadStatus(ctx context.Context, transferID string) (UploadStatus, error) {
	key := objectKey(transferID, statusObjectName)

	// GetObject is lazy; stat first so a missing transfer surfaces here.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return UploadStatus{}, ErrNotFound
		}
		return UploadStatus{}, fmt.Errorf("failed to stat status object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return UploadStatus{}, fmt.Errorf("failed to open status object: %w", err)
	}
	defer obj.Close()

	var status UploadStatus
	if err := json.NewDecoder(obj).Decode(&status); err != nil {
		if isNoSuchKey(err) {
			return UploadStatus{}, ErrNotFound
		}
		return UploadStatus{}, fmt.Errorf("failed to decode status object: %w", err)
	}
	return status, nil
}

func (s *MinioStore) GetFileStream(ctx context.Context, transferID string) (io.ReadCloser, error) {
	key := objectKey(transferID, dataObjectName)

	// GetObject is lazy; stat first so a missing transfer surfaces here.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat data object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open data object: %w", err)
	}
	return obj, nil
}

func (s *MinioStore) DeleteFile(ctx context.Context, transferID string) (bool, error) {
	prefix := transferPrefix + transferID + "/"

	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	deleted := 0
	for obj := range objectsCh {
		if obj.Err != nil {
			return deleted > 0, obj.Err
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			log.Printf("[TransferStore] failed to delete object %s: %v", obj.Key, err)
			return deleted > 0, err
		}
		deleted++
	}

	return deleted > 0, nil
}

func (s *MinioStore) GetMetadata(ctx context.Context, transferID string) (map[string]string, error) {
	info, err := s.client.StatObject(ctx, s.bucket, objectKey(transferID, dataObjectName), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat data object: %w", err)
	}

	meta := make(map[string]string, len(info.UserMetadata))
	for k, v := range info.UserMetadata {
		meta[k] = v
	}
	return meta, nil
}

func (s *MinioStore) FileExists(ctx context.Context, transferID string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectKey(transferID, dataObjectName), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
