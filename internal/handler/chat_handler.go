package handler

import (
	"net/http"

	"resto-collect/internal/model"
	"resto-collect/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ChatHandler handles chat requests.
type ChatHandler struct {
	service service.ChatService
	logger  zerolog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("handler", "chat").Logger(),
	}
}

// Partners handles GET /api/chat/partners requests.
func (h *ChatHandler) Partners(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	contacts, err := h.service.Partners(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// Messages handles GET /api/chat/messages?partner=<uuid> requests.
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	partner, err := partnerQuery(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	messages, err := h.service.Conversation(r.Context(), id, partner)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// Send handles POST /api/chat/messages requests.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	msg, err := h.service.Send(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// Unread handles GET /api/chat/unread requests.
func (h *ChatHandler) Unread(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	n, err := h.service.Unread(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.UnreadResponse{Unread: n})
}

func partnerQuery(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("partner")
	if raw == "" {
		return uuid.Nil, model.NewMissingField("partner is required")
	}
	partner, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.ErrCodeInvalidJSON, "invalid partner ID format")
	}
	return partner, nil
}
