package message

import (
	"context"
	"sort"
	"sync"

	"chirp/internal/chat"
)

// InMemoryStore keeps messages in process memory for development and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []*chat.Message
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Save(_ context.Context, msg *chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *msg
	s.messages = append(s.messages, &stored)
	return nil
}

func (s *InMemoryStore) Conversation(_ context.Context, userA, userB string) ([]*chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*chat.Message
	for _, m := range s.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			copied := *m
			out = append(out, &copied)
		}
	}
	// Stable keeps insertion order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
