package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resto-collect/internal/feed"
	"resto-collect/internal/model"
	"resto-collect/internal/realtime"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

type testFrame struct {
	Type    string          `json:"type"`
	Items   json.RawMessage `json:"items"`
	Message string          `json:"message"`
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) testFrame {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var frame testFrame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func dial(t *testing.T, ctx context.Context, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	require.NoError(t, err)
	return conn
}

func TestLiveHandler_MenuStreamsUpdates(t *testing.T) {
	hub := realtime.NewHub(zerolog.Nop())
	var price atomic.Int64
	price.Store(12)
	fetch := func(ctx context.Context) ([]model.MenuItem, error) {
		return []model.MenuItem{{ID: 1, Name: "Tajine", Price: decimal.NewFromInt(price.Load()), Available: true}}, nil
	}
	store := feed.New("catalog", fetch, hub, feed.Topic{Collection: "menu_items", Kind: realtime.EventUpdate}, zerolog.Nop())

	menu := new(MockMenuService)
	menu.On("LiveFeed").Return(store)
	h := NewLiveHandler(menu, new(MockChatService), new(MockAnnouncementService), nil, zerolog.Nop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Menu(w, asUser(r, clientID))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, srv, "/api/live/menu")
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readFrame(t, ctx, conn)
	assert.Equal(t, "snapshot", first.Type)
	assert.Contains(t, string(first.Items), `"price":"12"`)

	price.Store(14)
	hub.Publish(realtime.Event{Collection: "menu_items", Kind: realtime.EventUpdate})

	second := readFrame(t, ctx, conn)
	assert.Equal(t, "snapshot", second.Type)
	assert.Contains(t, string(second.Items), `"price":"14"`)

	conn.Close(websocket.StatusNormalClosure, "bye")
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveHandler_InitialFailureReportsError(t *testing.T) {
	fetch := func(ctx context.Context) ([]model.Message, error) {
		return nil, errors.New("database down")
	}
	store := feed.New("chat", fetch, nil, feed.Topic{}, zerolog.Nop())

	chat := new(MockChatService)
	chat.On("ConversationFeed", clientID, chefID.UserID).Return(store)
	h := NewLiveHandler(new(MockMenuService), chat, new(MockAnnouncementService), nil, zerolog.Nop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Chat(w, asUser(r, clientID))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, srv, "/api/live/chat?partner="+chefID.UserID.String())
	defer conn.Close(websocket.StatusNormalClosure, "")

	frame := readFrame(t, ctx, conn)
	assert.Equal(t, "error", frame.Type)
	assert.NotEmpty(t, frame.Message)
	chat.AssertExpectations(t)
}

func TestLiveHandler_ChatRequiresPartner(t *testing.T) {
	chat := new(MockChatService)
	h := NewLiveHandler(new(MockMenuService), chat, new(MockAnnouncementService), nil, zerolog.Nop())

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/live/chat", nil), clientID)
	w := httptest.NewRecorder()

	h.Chat(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	chat.AssertNotCalled(t, "ConversationFeed", mock.Anything, mock.Anything)
}

func TestLiveHandler_AnnouncementsRequiresIdentity(t *testing.T) {
	h := NewLiveHandler(new(MockMenuService), new(MockChatService), new(MockAnnouncementService), nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/live/announcements", nil)
	w := httptest.NewRecorder()

	h.Announcements(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
