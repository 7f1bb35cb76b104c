package storage

import (
	"context"
	"path"
	"strings"
	"sync"
)

// MemoryStore keeps assets in process memory and serves URLs under baseURL.
// It is meant for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "http://localhost:8001/assets"
	}
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

func (s *MemoryStore) Upload(_ context.Context, obj Object) (Asset, error) {
	ext := path.Ext(obj.FileName)
	id := path.Join(obj.Folder, strings.TrimSuffix(obj.FileName, ext))

	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)

	s.mu.Lock()
	s.objects[id] = data
	s.mu.Unlock()

	return Asset{URL: s.baseURL + "/image/upload/" + id + ext, AssetID: id}, nil
}

func (s *MemoryStore) Delete(_ context.Context, assetID string) error {
	s.mu.Lock()
	delete(s.objects, assetID)
	s.mu.Unlock()
	return nil
}

// Has reports whether assetID is stored.
func (s *MemoryStore) Has(assetID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[assetID]
	return ok
}

// Len returns the number of stored assets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
