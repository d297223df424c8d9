package chat

import (
	"time"

	"chirp/internal/auth"
)

// Message is one direct message between two users. Either Text or ImageURL
// may be empty, never both.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Contact is a sidebar entry: another user's identity plus their presence.
type Contact struct {
	auth.Identity
	Online bool `json:"online"`
}
