package audit

import "time"

// Event is emitted from domain logic to capture key account and messaging
// actions. Keep it transport-agnostic so stores and sinks can fan out.
// Detail must never contain tokens, passwords, or hashes.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

// Actions recorded by the account and chat services.
const (
	ActionUserSignedUp   = "user_signed_up"
	ActionUserLoggedIn   = "user_logged_in"
	ActionLoginFailed    = "login_failed"
	ActionUserLoggedOut  = "user_logged_out"
	ActionProfileUpdated = "profile_updated"
	ActionMessageSent    = "message_sent"
)
