// Package presence tracks which users currently hold an open realtime
// connection.
package presence

import (
	"context"
	"sync"
)

// Tracker records connect/disconnect transitions and answers membership
// queries. Implementations must be safe for concurrent use.
type Tracker interface {
	// MarkOnline records that the user has at least one live connection.
	MarkOnline(ctx context.Context, userID string) error

	// MarkOffline removes the user from the online set.
	MarkOffline(ctx context.Context, userID string) error

	// Online returns the IDs of all currently connected users.
	Online(ctx context.Context) ([]string, error)
}

// InMemoryTracker keeps the online set in process memory. Suitable for
// single-instance deployments and tests.
type InMemoryTracker struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

func NewInMemoryTracker() *InMemoryTracker {
	return &InMemoryTracker{online: make(map[string]struct{})}
}

func (t *InMemoryTracker) MarkOnline(_ context.Context, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online[userID] = struct{}{}
	return nil
}

func (t *InMemoryTracker) MarkOffline(_ context.Context, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.online, userID)
	return nil
}

func (t *InMemoryTracker) Online(_ context.Context) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.online))
	for id := range t.online {
		ids = append(ids, id)
	}
	return ids, nil
}
