package handler

import (
	"context"
	"net/http"

	"resto-collect/internal/feed"
	"resto-collect/internal/middleware"
	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var (
	chefID   = model.Identity{UserID: uuid.MustParse("9b2f3c1e-4a57-4e2b-9d61-0c5d7e8f1a23"), Email: "chef@resto.test", Role: model.RoleChef}
	clientID = model.Identity{UserID: uuid.MustParse("1f0e6a2b-8c3d-4e5f-a617-2b3c4d5e6f70"), Email: "ana@example.com", Role: model.RoleClient}
)

// asUser attaches identity to req as the auth middleware would.
func asUser(req *http.Request, identity model.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

// MockAccountService is a mock implementation of AccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAccountService) Logout(ctx context.Context, identity model.Identity) {
	m.Called(ctx, identity)
}

// MockMenuService is a mock implementation of MenuService.
type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) List(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuService) Sections(ctx context.Context) ([]model.MenuSection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuSection), args.Error(1)
}

func (m *MockMenuService) Get(ctx context.Context, id int64) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuService) SetAvailability(ctx context.Context, identity model.Identity, id int64, available bool) (*model.MenuItem, error) {
	args := m.Called(ctx, identity, id, available)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuService) LiveFeed() *feed.Store[model.MenuItem] {
	args := m.Called()
	return args.Get(0).(*feed.Store[model.MenuItem])
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) View(ctx context.Context, identity model.Identity, useLoyalty bool) (*model.CartResponse, error) {
	args := m.Called(ctx, identity, useLoyalty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, identity model.Identity, itemID int64) (*model.CartResponse, error) {
	args := m.Called(ctx, identity, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, identity model.Identity, index int) (*model.CartResponse, error) {
	args := m.Called(ctx, identity, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, identity model.Identity) (*model.CartResponse, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Checkout(ctx context.Context, identity model.Identity, useLoyalty bool) (*model.Receipt, error) {
	args := m.Called(ctx, identity, useLoyalty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

// MockLoyaltyService is a mock implementation of LoyaltyService.
type MockLoyaltyService struct {
	mock.Mock
}

func (m *MockLoyaltyService) Balance(ctx context.Context, identity model.Identity) (*model.BalanceResponse, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BalanceResponse), args.Error(1)
}

func (m *MockLoyaltyService) Scan(ctx context.Context, identity model.Identity, payload string) (*model.FidelityScan, error) {
	args := m.Called(ctx, identity, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FidelityScan), args.Error(1)
}

// MockChatService is a mock implementation of ChatService.
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Partners(ctx context.Context, identity model.Identity) ([]model.Contact, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contact), args.Error(1)
}

func (m *MockChatService) Conversation(ctx context.Context, identity model.Identity, partner uuid.UUID) ([]model.Message, error) {
	args := m.Called(ctx, identity, partner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockChatService) Send(ctx context.Context, identity model.Identity, req *model.SendMessageRequest) (*model.Message, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockChatService) Unread(ctx context.Context, identity model.Identity) (int, error) {
	args := m.Called(ctx, identity)
	return args.Int(0), args.Error(1)
}

func (m *MockChatService) ConversationFeed(identity model.Identity, partner uuid.UUID) *feed.Store[model.Message] {
	args := m.Called(identity, partner)
	return args.Get(0).(*feed.Store[model.Message])
}

// MockAnnouncementService is a mock implementation of AnnouncementService.
type MockAnnouncementService struct {
	mock.Mock
}

func (m *MockAnnouncementService) List(ctx context.Context, identity model.Identity) ([]model.Announcement, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Announcement), args.Error(1)
}

func (m *MockAnnouncementService) Publish(ctx context.Context, identity model.Identity, req *model.PublishAnnouncementRequest) (*model.Announcement, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Announcement), args.Error(1)
}

func (m *MockAnnouncementService) ToggleLike(ctx context.Context, identity model.Identity, id int64) (bool, error) {
	args := m.Called(ctx, identity, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnnouncementService) Feed(identity model.Identity) *feed.Store[model.Announcement] {
	args := m.Called(identity)
	return args.Get(0).(*feed.Store[model.Announcement])
}
