// Package handler exposes the messaging endpoints. Every route sits
// behind the auth guard; the caller's identity comes from the request
// context.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chirp/internal/chat"
	"chirp/internal/platform/middleware"
	dErrors "chirp/pkg/domain-errors"
	"chirp/pkg/platform/httputil"
)

// ChatService defines the messaging operations the handler delegates to.
type ChatService interface {
	Contacts(ctx context.Context, meID string) ([]*chat.Contact, error)
	History(ctx context.Context, meID, otherID string) ([]*chat.Message, error)
	Send(ctx context.Context, senderID, receiverID, text, imageDataURL string) (*chat.Message, error)
}

type Handler struct {
	logger *slog.Logger
	chat   ChatService
}

func New(chatService ChatService, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		chat:   chatService,
	}
}

// Register mounts the messaging routes behind the auth guard.
func (h *Handler) Register(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Group(func(pr chi.Router) {
		pr.Use(guard)
		pr.Get("/message/users", h.handleContacts)
		pr.Get("/message/{id}", h.handleHistory)
		pr.Post("/message/send/{id}", h.handleSend)
	})
}

func (h *Handler) handleContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ident := middleware.Identity(ctx)
	if ident == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	contacts, err := h.chat.Contacts(ctx, ident.ID)
	if err != nil {
		h.logWarnForClientErrors(ctx, "listing contacts failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contacts)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ident := middleware.Identity(ctx)
	if ident == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	otherID := chi.URLParam(r, "id")
	messages, err := h.chat.History(ctx, ident.ID, otherID)
	if err != nil {
		h.logWarnForClientErrors(ctx, "loading conversation failed", err)
		httputil.WriteError(w, err)
		return
	}
	if messages == nil {
		messages = []*chat.Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ident := middleware.Identity(ctx)
	if ident == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	receiverID := chi.URLParam(r, "id")
	msg, err := h.chat.Send(ctx, ident.ID, receiverID, req.Text, req.Image)
	if err != nil {
		h.logWarnForClientErrors(ctx, "sending message failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) logWarnForClientErrors(ctx context.Context, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err.Error(), "request_id", requestID)
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err.Error(), "request_id", requestID)
}
