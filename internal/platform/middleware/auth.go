package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"chirp/internal/auth"
	dErrors "chirp/pkg/domain-errors"
	"chirp/pkg/platform/httputil"
	"chirp/pkg/platform/sentinel"
)

// TokenExtractor reads the session token from an inbound request. An absent
// token is reported through ok, not an error.
type TokenExtractor interface {
	Extract(r *http.Request) (token string, ok bool)
}

// TokenVerifier validates a session token and returns the subject user ID.
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// IdentityStore resolves a subject ID to its password-stripped identity.
type IdentityStore interface {
	Identity(ctx context.Context, userID string) (*auth.Identity, error)
}

type contextKeyIdentity struct{}

// Identity retrieves the authenticated identity from the context. It is nil
// on routes that do not run behind RequireAuth.
func Identity(ctx context.Context) *auth.Identity {
	ident, ok := ctx.Value(contextKeyIdentity{}).(*auth.Identity)
	if !ok {
		return nil
	}
	return ident
}

// WithIdentity attaches an identity to the context. Exposed for tests that
// exercise protected handlers without the full middleware chain.
func WithIdentity(ctx context.Context, ident *auth.Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity{}, ident)
}

// RequireAuth is the pre-handler gate on every protected route. It resolves
// cookie, token, and user record in order and fails closed: any step that
// does not succeed ends the request before the protected handler runs.
func RequireAuth(extractor TokenExtractor, verifier TokenVerifier, store IdentityStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			tokenString, ok := extractor.Extract(r)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"path", r.URL.Path,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no token provided"))
				return
			}

			userID, err := verifier.Verify(tokenString)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err.Error(),
					"path", r.URL.Path,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}

			ident, err := store.Identity(ctx, userID)
			if err != nil {
				// The subject may have been deleted after the token was issued.
				if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
					httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
					return
				}
				logger.ErrorContext(ctx, "identity lookup failed",
					"error", err.Error(),
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal server error"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, ident)))
		})
	}
}
