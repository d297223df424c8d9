package assets

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps uploads in process memory. Used in development when no
// bucket is configured and in tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

func (s *InMemoryStore) Upload(_ context.Context, dataURL string) (string, error) {
	data, contentType, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	key := uuid.NewString() + extensionFor(contentType)

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()

	return "memory://assets/" + key, nil
}

// Get returns a stored object's bytes, for tests.
func (s *InMemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}
