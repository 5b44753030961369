package transferstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore keeps transfers in process memory. It backs tests and local
// development where no object store is running.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	statuses map[string]UploadStatus
	metadata map[string]map[string]string
	failNext map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		statuses: make(map[string]UploadStatus),
		metadata: make(map[string]map[string]string),
		failNext: make(map[string]error),
	}
}

// Put records a finished or in-flight transfer as the receiving tier would.
func (s *MemoryStore) Put(transferID string, content []byte, status UploadStatus, meta map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[transferID] = content
	s.statuses[transferID] = status
	if meta != nil {
		s.metadata[transferID] = meta
	}
}

// FailDeletesWith makes subsequent DeleteFile calls for transferID return err.
func (s *MemoryStore) FailDeletesWith(transferID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[transferID] = err
}

func (s *MemoryStore) GetUploadStatus(_ context.Context, transferID string) (UploadStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[transferID]
	if !ok {
		return UploadStatus{}, ErrNotFound
	}
	return status, nil
}

func (s *MemoryStore) GetFileStream(_ context.Context, transferID string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.data[transferID]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *MemoryStore) DeleteFile(_ context.Context, transferID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failNext[transferID]; ok {
		return false, err
	}
	_, existed := s.data[transferID]
	delete(s.data, transferID)
	delete(s.statuses, transferID)
	delete(s.metadata, transferID)
	return existed, nil
}

func (s *MemoryStore) GetMetadata(_ context.Context, transferID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.data[transferID]; !ok {
		return nil, ErrNotFound
	}
	meta := make(map[string]string, len(s.metadata[transferID]))
	for k, v := range s.metadata[transferID] {
		meta[k] = v
	}
	return meta, nil
}

func (s *MemoryStore) FileExists(_ context.Context, transferID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[transferID]
	return ok, nil
}

var _ Store = (*MemoryStore)(nil)
