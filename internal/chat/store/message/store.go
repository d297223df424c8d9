// Package message holds the direct-message store implementations.
package message

import (
	"context"

	"chirp/internal/chat"
)

type Store interface {
	Save(ctx context.Context, msg *chat.Message) error
	// Conversation returns every message exchanged between the two users,
	// in either direction, oldest first.
	Conversation(ctx context.Context, userA, userB string) ([]*chat.Message, error)
}
