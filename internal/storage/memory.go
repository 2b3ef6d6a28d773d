package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
)

// MemoryStore keeps blobs in process memory. It backs tests and local
// development where no storage bucket is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores the blob bytes under the given key.
func (s *MemoryStore) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading blob %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

// Delete removes the blob stored under the given key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("blob %s: %w", key, apperrors.ErrNotFound)
	}
	delete(s.blobs, key)
	return nil
}

// URL derives a local serving path for a stored key.
func (s *MemoryStore) URL(key string) string {
	return "/media/" + key
}

// Has reports whether a blob exists under the given key.
func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
