package auth

import "time"

// User is the identity record held by the credential store. The password
// hash is salted and one-way; the plaintext is never stored or logged.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the password-stripped view of a User. The auth guard attaches
// it to the request context after a successful check; it lives only for the
// duration of that request and is never cached.
type Identity struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Identity strips the password hash from a User.
func (u *User) Identity() *Identity {
	return &Identity{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
