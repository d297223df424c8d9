// Package service implements the account operations: signup, login, logout,
// identity resolution for the auth guard, and profile updates. Transport
// concerns (cookies, JSON, status codes) stay in the handler layer; this
// package returns tokens and coded errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"chirp/internal/assets"
	"chirp/internal/audit"
	"chirp/internal/auth"
	"chirp/internal/platform/metrics"
	dErrors "chirp/pkg/domain-errors"
	"chirp/pkg/platform/sentinel"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// invalidCredentials is deliberately identical for unknown emails and wrong
// passwords so login responses cannot be used to enumerate accounts.
var invalidCredentials = dErrors.New(dErrors.CodeBadRequest, "invalid credentials")

type UserStore interface {
	Create(ctx context.Context, user *auth.User) error
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdateProfilePic(ctx context.Context, id, url string) (*auth.User, error)
}

// TokenIssuer produces signed session tokens.
type TokenIssuer interface {
	Issue(userID string, ttl time.Duration) (string, error)
}

// Auditor records account events. Emission is best-effort: a failing audit
// sink must not fail the account operation.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	users      UserStore
	tokens     TokenIssuer
	assets     assets.Store
	auditor    Auditor
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
	bcryptCost int
	sessionTTL time.Duration
}

func New(
	users UserStore,
	tokens TokenIssuer,
	assetStore assets.Store,
	auditor Auditor,
	m *metrics.Metrics,
	logger *slog.Logger,
	bcryptCost int,
	sessionTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		assets:     assetStore,
		auditor:    auditor,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer("chirp/auth"),
		bcryptCost: bcryptCost,
		sessionTTL: sessionTTL,
	}
}

// Signup creates an account and returns the new identity with a session
// token. The record is persisted first and the token issued only after the
// write succeeds, so a failed save never leaves the caller authenticated.
func (s *Service) Signup(ctx context.Context, fullName, email, password string) (*auth.Identity, string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.signup")
	defer span.End()

	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" || email == "" || password == "" {
		return nil, "", dErrors.New(dErrors.CodeBadRequest, "missing required fields")
	}
	if len(password) < MinPasswordLength {
		return nil, "", dErrors.New(dErrors.CodeBadRequest, "password must be at least 8 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", dErrors.New(dErrors.CodeConflict, "email already exists")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		span.RecordError(err)
		return nil, "", dErrors.New(dErrors.CodeInternal, "store lookup failed")
	}

	// A fresh salt per signup: two identical passwords never share a hash.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		span.RecordError(err)
		return nil, "", dErrors.New(dErrors.CodeInternal, "password hashing failed")
	}

	now := time.Now()
	user := &auth.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The store-level uniqueness guard closes the race the precheck
		// cannot: two concurrent signups with one email get one success.
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "email already exists")
		}
		span.RecordError(err)
		return nil, "", dErrors.New(dErrors.CodeInternal, "could not create user")
	}

	tokenString, err := s.tokens.Issue(user.ID, s.sessionTTL)
	if err != nil {
		span.RecordError(err)
		return nil, "", dErrors.New(dErrors.CodeInternal, "could not issue token")
	}

	s.metrics.SignupsTotal.Inc()
	s.emit(ctx, user.ID, audit.ActionUserSignedUp, "")

	return user.Identity(), tokenString, nil
}

// Login verifies credentials and returns the identity with a fresh session
// token. Unknown email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*auth.Identity, string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", invalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.LoginFailuresTotal.Inc()
			s.emit(ctx, "", audit.ActionLoginFailed, "unknown email")
			return nil, "", invalidCredentials
		}
		span.RecordError(err)
		return nil, "", dErrors.New(dErrors.CodeInternal, "store lookup failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.LoginFailuresTotal.Inc()
		s.emit(ctx, user.ID, audit.ActionLoginFailed, "wrong password")
		return nil, "", invalidCredentials
	}

	tokenString, err := s.tokens.Issue(user.ID, s.sessionTTL)
	if err != nil {
		span.RecordError(err)
		return nil, "", dErrors.New(dErrors.CodeInternal, "could not issue token")
	}

	s.metrics.LoginsTotal.Inc()
	s.emit(ctx, user.ID, audit.ActionUserLoggedIn, "")

	return user.Identity(), tokenString, nil
}

// Logout records the event. Clearing the cookie is the handler's job; there
// is no server-side session state to tear down.
func (s *Service) Logout(ctx context.Context, userID string) {
	s.emit(ctx, userID, audit.ActionUserLoggedOut, "")
}

// Identity resolves a subject ID to its password-stripped identity. The auth
// guard calls this on every protected request.
func (s *Service) Identity(ctx context.Context, userID string) (*auth.Identity, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "store lookup failed")
	}
	return user.Identity(), nil
}

// UpdateProfile uploads the encoded profile picture to the asset host and
// persists the resulting URL.
func (s *Service) UpdateProfile(ctx context.Context, userID, profilePic string) (*auth.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "auth.update_profile")
	defer span.End()

	if strings.TrimSpace(profilePic) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "profile pic is required")
	}

	url, err := s.assets.Upload(ctx, profilePic)
	if err != nil {
		if errors.Is(err, assets.ErrInvalidImage) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid image payload")
		}
		span.RecordError(err)
		return nil, dErrors.New(dErrors.CodeInternal, "image upload failed")
	}

	user, err := s.users.UpdateProfilePic(ctx, userID, url)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		span.RecordError(err)
		return nil, dErrors.New(dErrors.CodeInternal, "could not update profile")
	}

	s.emit(ctx, userID, audit.ActionProfileUpdated, "")
	return user.Identity(), nil
}

func (s *Service) emit(ctx context.Context, userID, action, detail string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{UserID: userID, Action: action, Detail: detail}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err.Error())
	}
}
