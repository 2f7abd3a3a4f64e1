package service

import (
	"context"

	"resto-collect/internal/feed"
	"resto-collect/internal/model"

	"github.com/google/uuid"
)

// AccountService defines operations for registration and sign-in.
type AccountService interface {
	// Register creates an account and signs it in.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login checks credentials, issues a token and opens the session.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Logout ends the session of identity.
	Logout(ctx context.Context, identity model.Identity)
}

// MenuService defines operations on the restaurant menu.
type MenuService interface {
	// List returns the cached catalog, loading it on first use.
	List(ctx context.Context) ([]model.MenuItem, error)

	// Sections returns the catalog grouped by category.
	Sections(ctx context.Context) ([]model.MenuSection, error)

	// Get retrieves a single dish from the database.
	Get(ctx context.Context, id int64) (*model.MenuItem, error)

	// SetAvailability switches a dish on or off. Only the chef may do this.
	SetAvailability(ctx context.Context, identity model.Identity, id int64, available bool) (*model.MenuItem, error)

	// LiveFeed returns a new, detached catalog feed for one live connection.
	LiveFeed() *feed.Store[model.MenuItem]
}

// CartService defines operations on the cart of the signed-in client.
type CartService interface {
	// View returns the cart and its quote.
	View(ctx context.Context, identity model.Identity, useLoyalty bool) (*model.CartResponse, error)

	// Add appends an available dish to the cart.
	Add(ctx context.Context, identity model.Identity, itemID int64) (*model.CartResponse, error)

	// Remove deletes the entry at index.
	Remove(ctx context.Context, identity model.Identity, index int) (*model.CartResponse, error)

	// Clear empties the cart.
	Clear(ctx context.Context, identity model.Identity) (*model.CartResponse, error)

	// Checkout pays for the cart.
	Checkout(ctx context.Context, identity model.Identity, useLoyalty bool) (*model.Receipt, error)
}

// LoyaltyService defines operations on loyalty points.
type LoyaltyService interface {
	// Balance fetches the current balance.
	Balance(ctx context.Context, identity model.Identity) (*model.BalanceResponse, error)

	// Scan records a scanned receipt QR code.
	Scan(ctx context.Context, identity model.Identity, payload string) (*model.FidelityScan, error)
}

// ChatService defines operations for the customer and chef chat.
type ChatService interface {
	// Partners lists who identity may talk to.
	Partners(ctx context.Context, identity model.Identity) ([]model.Contact, error)

	// Conversation returns the messages with partner and marks the incoming ones as read.
	Conversation(ctx context.Context, identity model.Identity, partner uuid.UUID) ([]model.Message, error)

	// Send posts a message.
	Send(ctx context.Context, identity model.Identity, req *model.SendMessageRequest) (*model.Message, error)

	// Unread counts unread incoming messages.
	Unread(ctx context.Context, identity model.Identity) (int, error)

	// ConversationFeed returns a detached feed of the conversation with partner.
	ConversationFeed(identity model.Identity, partner uuid.UUID) *feed.Store[model.Message]
}

// AnnouncementService defines operations for the chef's announcements.
type AnnouncementService interface {
	// List returns all announcements, newest first.
	List(ctx context.Context, identity model.Identity) ([]model.Announcement, error)

	// Publish uploads the images and stores a new announcement. Only the chef may publish.
	Publish(ctx context.Context, identity model.Identity, req *model.PublishAnnouncementRequest) (*model.Announcement, error)

	// ToggleLike likes or unlikes an announcement and reports the new state.
	ToggleLike(ctx context.Context, identity model.Identity, id int64) (bool, error)

	// Feed returns a detached feed of the announcements as seen by identity.
	Feed(identity model.Identity) *feed.Store[model.Announcement]
}
