package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"resto-collect/internal/feed"
	"resto-collect/internal/service"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const wsWriteTimeout = 10 * time.Second

// liveFrame is one message pushed to a live connection.
type liveFrame struct {
	Type    string      `json:"type"`
	Items   interface{} `json:"items,omitempty"`
	Message string      `json:"message,omitempty"`
}

// LiveHandler streams feed snapshots over websockets. Every connection owns
// its own feed, attached for the lifetime of the socket.
type LiveHandler struct {
	menu          service.MenuService
	chat          service.ChatService
	announcements service.AnnouncementService
	origins       []string
	logger        zerolog.Logger
}

// NewLiveHandler creates a new live handler. origins is passed to the
// websocket origin check.
func NewLiveHandler(menu service.MenuService, chat service.ChatService, announcements service.AnnouncementService, origins []string, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{
		menu:          menu,
		chat:          chat,
		announcements: announcements,
		origins:       origins,
		logger:        logger.With().Str("handler", "live").Logger(),
	}
}

// Menu handles GET /api/live/menu websocket upgrades.
func (h *LiveHandler) Menu(w http.ResponseWriter, r *http.Request) {
	conn, ok := h.accept(w, r)
	if !ok {
		return
	}
	serveFeed(r.Context(), conn, h.menu.LiveFeed(), h.logger.With().Str("feed", "menu").Logger())
}

// Chat handles GET /api/live/chat?partner=<uuid> websocket upgrades.
func (h *LiveHandler) Chat(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}
	partner, err := partnerQuery(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	conn, ok := h.accept(w, r)
	if !ok {
		return
	}
	serveFeed(r.Context(), conn, h.chat.ConversationFeed(id, partner), h.logger.With().Str("feed", "chat").Logger())
}

// Announcements handles GET /api/live/announcements websocket upgrades.
func (h *LiveHandler) Announcements(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	conn, ok := h.accept(w, r)
	if !ok {
		return
	}
	serveFeed(r.Context(), conn, h.announcements.Feed(id), h.logger.With().Str("feed", "announcements").Logger())
}

func (h *LiveHandler) accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, bool) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("websocket upgrade failed")
		return nil, false
	}
	return conn, true
}

// serveFeed attaches store, writes its first snapshot and then every new
// one until the peer goes away. Only the latest pending snapshot is sent
// when the socket falls behind.
func serveFeed[T any](ctx context.Context, conn *websocket.Conn, store *feed.Store[T], logger zerolog.Logger) {
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	// Nothing is read from clients; CloseRead handles control frames and
	// cancels ctx once the peer disconnects.
	ctx = conn.CloseRead(ctx)

	updates := make(chan []T, 1)
	cancel := store.OnChange(func(items []T) {
		for {
			select {
			case updates <- items:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer cancel()

	store.Attach(ctx)
	defer store.Close()

	if err := store.Refresh(ctx, true); err != nil {
		logger.Warn().Err(err).Msg("initial live snapshot failed")
		if err := writeFrame(ctx, conn, liveFrame{Type: "error", Message: "failed to load data, retrying"}); err != nil {
			return
		}
	}

	logger.Debug().Msg("live connection opened")

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("live connection closed")
			return
		case items := <-updates:
			if err := writeFrame(ctx, conn, liveFrame{Type: "snapshot", Items: items}); err != nil {
				if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
					logger.Warn().Err(err).Msg("live write failed")
				}
				return
			}
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame liveFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
