// Package user holds the credential store implementations. Stores report
// facts through pkg/platform/sentinel errors; the account service translates
// them into domain errors.
package user

import (
	"context"

	"chirp/internal/auth"
)

type Store interface {
	// Create persists a new user. The email uniqueness check is atomic:
	// concurrent creates with the same email yield exactly one success and
	// sentinel.ErrConflict for the rest.
	Create(ctx context.Context, user *auth.User) error
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdateProfilePic(ctx context.Context, id, url string) (*auth.User, error)
	// ListOthers returns every user except the given one, for the chat
	// sidebar.
	ListOthers(ctx context.Context, excludeID string) ([]*auth.User, error)
}
