// Package handler exposes the account endpoints. It decodes JSON, validates
// input shape, delegates to the account service, and manages the session
// cookie. Business rules live in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chirp/internal/auth"
	"chirp/internal/auth/cookie"
	"chirp/internal/platform/middleware"
	dErrors "chirp/pkg/domain-errors"
	"chirp/pkg/platform/httputil"
)

// AccountService defines the account operations the handler delegates to.
type AccountService interface {
	Signup(ctx context.Context, fullName, email, password string) (*auth.Identity, string, error)
	Login(ctx context.Context, email, password string) (*auth.Identity, string, error)
	Logout(ctx context.Context, userID string)
	UpdateProfile(ctx context.Context, userID, profilePic string) (*auth.Identity, error)
}

type Handler struct {
	logger  *slog.Logger
	account AccountService
	cookies *cookie.Adapter
}

func New(account AccountService, cookies *cookie.Adapter, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		account: account,
		cookies: cookies,
	}
}

// Register mounts the account routes. guard is the auth middleware applied
// to the protected subset.
func (h *Handler) Register(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(guard)
		pr.Get("/auth/check", h.handleCheck)
		pr.Put("/auth/update-profile", h.handleUpdateProfile)
	})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ident, token, err := h.account.Signup(ctx, req.FullName, req.Email, req.Password)
	if err != nil {
		h.logWarnForClientErrors(ctx, "signup failed", err)
		httputil.WriteError(w, err)
		return
	}

	// Persisted first, cookie second: the client is never authenticated
	// against a record that failed to save.
	h.cookies.Attach(w, token)
	httputil.WriteJSON(w, http.StatusCreated, signupResponse{
		ID:      ident.ID,
		Message: "user created",
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ident, token, err := h.account.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logWarnForClientErrors(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.cookies.Attach(w, token)
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		ID:       ident.ID,
		FullName: ident.FullName,
		Email:    ident.Email,
		Message:  "logged in",
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Logout requires no auth; clearing an absent cookie is harmless.
	userID := ""
	if ident := middleware.Identity(r.Context()); ident != nil {
		userID = ident.ID
	}
	h.account.Logout(r.Context(), userID)

	h.cookies.Clear(w)
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ident := middleware.Identity(r.Context())
	if ident == nil {
		// Unreachable behind the guard; kept as a hard stop.
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ident)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ident := middleware.Identity(ctx)
	if ident == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.account.UpdateProfile(ctx, ident.ID, req.ProfilePic)
	if err != nil {
		h.logWarnForClientErrors(ctx, "profile update failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

// logWarnForClientErrors logs client errors at warn and everything else at
// error. Error messages are safe to log; request payloads are not.
func (h *Handler) logWarnForClientErrors(ctx context.Context, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err.Error(), "request_id", requestID)
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err.Error(), "request_id", requestID)
}
