package repository

import (
	"context"

	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MenuRepository defines the interface for menu data access operations.
type MenuRepository interface {
	// List retrieves every menu item ordered by ascending price.
	List(ctx context.Context) ([]model.MenuItem, error)

	// GetByID retrieves a single menu item. It returns nil, nil when the item does not exist.
	GetByID(ctx context.Context, id int64) (*model.MenuItem, error)

	// SetAvailability switches a dish on or off for the day.
	SetAvailability(ctx context.Context, id int64, available bool) (*model.MenuItem, error)

	// Upsert inserts a menu item or updates the one with the same name.
	Upsert(ctx context.Context, item *model.MenuItem) error
}

// ClientRepository defines the interface for account data access operations.
type ClientRepository interface {
	// Create inserts a new client. A duplicate email returns model.ErrEmailTaken.
	Create(ctx context.Context, client *model.Client) error

	// GetByEmail retrieves a client by email, or model.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.Client, error)

	// GetByID retrieves a client by id, or model.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)

	// GetTokens returns the loyalty balance of a client.
	GetTokens(ctx context.Context, id uuid.UUID) (int64, error)

	// AddTokens atomically increments the loyalty balance of a client.
	AddTokens(ctx context.Context, id uuid.UUID, amount int64) error

	// ListByRole returns the contacts having role, ordered by name.
	ListByRole(ctx context.Context, role model.Role) ([]model.Contact, error)
}

// MessageRepository defines the interface for chat message data access operations.
type MessageRepository interface {
	// Conversation returns the messages exchanged between a and b, oldest first.
	Conversation(ctx context.Context, a, b uuid.UUID) ([]model.Message, error)

	// Insert stores a message and fills in its id and timestamp.
	Insert(ctx context.Context, msg *model.Message) error

	// CountUnread counts the unread messages addressed to receiver.
	CountUnread(ctx context.Context, receiver uuid.UUID) (int, error)

	// MarkRead flags the messages from sender to receiver as read.
	MarkRead(ctx context.Context, receiver, sender uuid.UUID) (int64, error)
}

// AnnouncementRepository defines the interface for announcement data access operations.
type AnnouncementRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// List returns announcements newest first, with like counts and whether viewer liked each one.
	List(ctx context.Context, viewer uuid.UUID) ([]model.Announcement, error)

	// Insert stores an announcement and fills in its id and timestamp.
	Insert(ctx context.Context, a *model.Announcement) error

	// IsLiked reports whether user likes the announcement, within tx.
	IsLiked(ctx context.Context, tx pgx.Tx, announcementID int64, user uuid.UUID) (bool, error)

	// Like records a like within tx.
	Like(ctx context.Context, tx pgx.Tx, announcementID int64, user uuid.UUID) error

	// Unlike removes a like within tx.
	Unlike(ctx context.Context, tx pgx.Tx, announcementID int64, user uuid.UUID) error
}

// ScanRepository defines the interface for loyalty scan data access operations.
type ScanRepository interface {
	// InsertScan stores a scanned receipt.
	InsertScan(ctx context.Context, scan *model.FidelityScan) error
}
