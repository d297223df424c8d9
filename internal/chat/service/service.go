// Package service implements messaging between signed-in users:
// listing contacts, fetching conversation history, and sending messages
// with realtime delivery to connected receivers.
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

	"chirp/internal/assets"
	"chirp/internal/audit"
	"chirp/internal/auth"
	"chirp/internal/chat"
	"chirp/internal/platform/metrics"
	"chirp/pkg/platform/sentinel"

	dErrors "chirp/pkg/domain-errors"
)

// UserDirectory is the slice of the user store the chat service needs.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
	ListOthers(ctx context.Context, excludeID string) ([]*auth.User, error)
}

// MessageStore persists and retrieves messages.
type MessageStore interface {
	Save(ctx context.Context, msg *chat.Message) error
	Conversation(ctx context.Context, userA, userB string) ([]*chat.Message, error)
}

// Presence answers which users currently hold a realtime connection.
type Presence interface {
	Online(ctx context.Context) ([]string, error)
}

// Notifier pushes a payload to a connected user. Delivery is best
// effort; an offline receiver is not an error.
type Notifier interface {
	Send(userID string, payload any)
}

// Auditor records domain events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	users    UserDirectory
	messages MessageStore
	presence Presence
	notifier Notifier
	assets   assets.Store
	auditor  Auditor
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(
	users UserDirectory,
	messages MessageStore,
	presence Presence,
	notifier Notifier,
	assetStore assets.Store,
	auditor Auditor,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		messages: messages,
		presence: presence,
		notifier: notifier,
		assets:   assetStore,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("chirp/chat"),
	}
}

// Contacts returns every other user, flagged with their current online
// state. A presence backend failure degrades to everyone-offline rather
// than failing the request.
func (s *Service) Contacts(ctx context.Context, meID string) ([]*chat.Contact, error) {
	ctx, span := s.tracer.Start(ctx, "chat.Contacts")
	defer span.End()

	users, err := s.users.ListOthers(ctx, meID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list users")
	}

	online := make(map[string]struct{})
	ids, err := s.presence.Online(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read presence", "error", err)
	} else {
		for _, id := range ids {
			online[id] = struct{}{}
		}
	}

	contacts := make([]*chat.Contact, 0, len(users))
	for _, u := range users {
		_, isOnline := online[u.ID]
		contacts = append(contacts, &chat.Contact{
			Identity: *u.Identity(),
			Online:   isOnline,
		})
	}
	return contacts, nil
}

// History returns the conversation between the caller and another user,
// oldest first. The other user must exist.
func (s *Service) History(ctx context.Context, meID, otherID string) ([]*chat.Message, error) {
	ctx, span := s.tracer.Start(ctx, "chat.History")
	defer span.End()

	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load user")
	}

	msgs, err := s.messages.Conversation(ctx, meID, otherID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load conversation")
	}
	return msgs, nil
}

// Send stores a message and pushes it to the receiver's live connection
// if one exists. At least one of text and image must be present.
func (s *Service) Send(ctx context.Context, senderID, receiverID, text, imageDataURL string) (*chat.Message, error) {
	ctx, span := s.tracer.Start(ctx, "chat.Send")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" && imageDataURL == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "message must contain text or an image")
	}

	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load user")
	}

	var imageURL string
	if imageDataURL != "" {
		url, err := s.assets.Upload(ctx, imageDataURL)
		if err != nil {
			if errors.Is(err, assets.ErrInvalidImage) {
				return nil, dErrors.New(dErrors.CodeBadRequest, "invalid image payload")
			}
			s.logger.ErrorContext(ctx, "failed to upload message image", "error", err)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to store image")
		}
		imageURL = url
	}

	msg := &chat.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		ImageURL:   imageURL,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Save(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to save message", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to save message")
	}

	s.metrics.MessagesSentTotal.Inc()
	s.emit(ctx, senderID, audit.ActionMessageSent, "to "+receiverID)

	s.notifier.Send(receiverID, msg)

	return msg, nil
}

func (s *Service) emit(ctx context.Context, userID, action, detail string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{UserID: userID, Action: action, Detail: detail}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err.Error())
	}
}
