// Package token signs and verifies the compact session tokens carried by the
// session cookie. Verification is stateless: validity is proven purely by
// the HMAC signature and the embedded expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "chirp/pkg/domain-errors"
)

// DefaultTTL is how long an issued session token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Claims are the JWT claims embedded in a session token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 session tokens. The signing key is fixed
// at construction and never read from ambient state, so verification stays
// a pure function of (token, key, clock).
type Codec struct {
	signingKey []byte
}

func NewCodec(signingKey string) *Codec {
	return &Codec{signingKey: []byte(signingKey)}
}

// Issue produces a signed token binding userID to an absolute expiry of
// now+ttl.
func (c *Codec) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(c.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// Verify checks the signature and expiry and returns the subject user ID.
// Verification is all-or-nothing: a bad signature, malformed payload, or
// passed expiry all yield an unauthorized error.
func (c *Codec) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	return claims.UserID, nil
}
