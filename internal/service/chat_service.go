package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"resto-collect/internal/feed"
	"resto-collect/internal/model"
	"resto-collect/internal/realtime"
	"resto-collect/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// MessageCollection is the table the chat feeds listen to.
	MessageCollection = "messages"
	// ChatPollInterval is how often an open conversation re-fetches on its own.
	ChatPollInterval = 5 * time.Second
)

// chatService implements ChatService.
type chatService struct {
	clientRepo  repository.ClientRepository
	messageRepo repository.MessageRepository
	hub         realtime.Subscriber
	logger      zerolog.Logger
}

// NewChatService creates a new chat service.
func NewChatService(clientRepo repository.ClientRepository, messageRepo repository.MessageRepository, hub realtime.Subscriber, logger zerolog.Logger) ChatService {
	return &chatService{
		clientRepo:  clientRepo,
		messageRepo: messageRepo,
		hub:         hub,
		logger:      logger.With().Str("service", "chat").Logger(),
	}
}

// Partners lists every client for the chef, and the chef for a client.
func (s *chatService) Partners(ctx context.Context, identity model.Identity) ([]model.Contact, error) {
	role := model.RoleChef
	if identity.IsChef() {
		role = model.RoleClient
	}

	contacts, err := s.clientRepo.ListByRole(ctx, role)
	if err != nil {
		return nil, model.NewRemoteFailure("failed to load chat partners", err)
	}

	if !identity.IsChef() && len(contacts) > 1 {
		contacts = contacts[:1]
	}
	return contacts, nil
}

// Conversation returns the messages with partner and marks the incoming ones as read.
func (s *chatService) Conversation(ctx context.Context, identity model.Identity, partner uuid.UUID) ([]model.Message, error) {
	if partner == uuid.Nil {
		return nil, model.NewMissingField("partner is required")
	}

	if _, err := s.messageRepo.MarkRead(ctx, identity.UserID, partner); err != nil {
		s.logger.Warn().Err(err).Str("partner_id", partner.String()).Msg("failed to mark messages read")
	}

	messages, err := s.messageRepo.Conversation(ctx, identity.UserID, partner)
	if err != nil {
		return nil, model.NewRemoteFailure("failed to load messages", err)
	}
	return messages, nil
}

// Send posts a message. Content is trimmed and must not be empty.
func (s *chatService) Send(ctx context.Context, identity model.Identity, req *model.SendMessageRequest) (*model.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.NewMissingField("content is required")
	}
	if req.ReceiverID == uuid.Nil {
		return nil, model.NewMissingField("receiverId is required")
	}

	if _, err := s.clientRepo.GetByID(ctx, req.ReceiverID); err != nil {
		if kind, ok := model.KindOf(err); ok && kind == model.KindNotFound {
			return nil, err
		}
		return nil, model.NewRemoteFailure("failed to look up receiver", err)
	}

	msg := &model.Message{
		SenderID:   identity.UserID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}
	if err := s.messageRepo.Insert(ctx, msg); err != nil {
		return nil, model.NewRemoteFailure("failed to send message", err)
	}

	s.logger.Debug().
		Int64("message_id", msg.ID).
		Str("sender_id", msg.SenderID.String()).
		Str("receiver_id", msg.ReceiverID.String()).
		Msg("message sent")

	return msg, nil
}

// Unread counts unread incoming messages.
func (s *chatService) Unread(ctx context.Context, identity model.Identity) (int, error) {
	n, err := s.messageRepo.CountUnread(ctx, identity.UserID)
	if err != nil {
		return 0, model.NewRemoteFailure("failed to count unread messages", err)
	}
	return n, nil
}

// ConversationFeed returns a detached feed of the conversation with partner.
// It refreshes on every new message of the pair and polls every ChatPollInterval.
func (s *chatService) ConversationFeed(identity model.Identity, partner uuid.UUID) *feed.Store[model.Message] {
	me := identity.UserID
	fetch := func(ctx context.Context) ([]model.Message, error) {
		return s.messageRepo.Conversation(ctx, me, partner)
	}

	return feed.New("chat", fetch, s.hub, feed.Topic{
		Collection: MessageCollection,
		Kind:       realtime.EventInsert,
		Filter: func(ev realtime.Event) bool {
			return messageEventBetween(ev, me, partner)
		},
	}, s.logger, feed.WithPollInterval[model.Message](ChatPollInterval))
}

// messageEventBetween reports whether a messages event belongs to the pair.
// Events without a decodable record are accepted.
func messageEventBetween(ev realtime.Event, a, b uuid.UUID) bool {
	if len(ev.Record) == 0 {
		return true
	}
	var row struct {
		SenderID   uuid.UUID `json:"sender_id"`
		ReceiverID uuid.UUID `json:"receiver_id"`
	}
	if err := json.Unmarshal(ev.Record, &row); err != nil {
		return true
	}
	m := model.Message{SenderID: row.SenderID, ReceiverID: row.ReceiverID}
	return m.Between(a, b)
}
