package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"resto-collect/internal/cart"
	"resto-collect/internal/loyalty"
	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBalanceStore is a mock implementation of loyalty.BalanceStore.
type MockBalanceStore struct {
	mock.Mock
}

func (m *MockBalanceStore) GetTokens(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceStore) AddTokens(ctx context.Context, clientID uuid.UUID, amount int64) error {
	args := m.Called(ctx, clientID, amount)
	return args.Error(0)
}

// memoryStore is an in-memory localstore.Store.
type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// staticIdentity is an IdentitySource returning a fixed identity.
type staticIdentity struct {
	identity model.Identity
	ok       bool
}

func (s staticIdentity) Current() (model.Identity, bool) {
	return s.identity, s.ok
}

type fixture struct {
	ctx      context.Context
	userID   uuid.UUID
	cart     *cart.Cart
	store    *MockBalanceStore
	ledger   *loyalty.Ledger
	workflow *Workflow
	states   []State
}

func newFixture(t *testing.T, signedIn bool, balance int64) *fixture {
	t.Helper()

	ctx := context.Background()
	userID := uuid.New()
	logger := zerolog.Nop()

	store := new(MockBalanceStore)
	store.On("GetTokens", ctx, userID).Return(balance, nil)

	ledger := loyalty.NewLedger(store, logger)
	_, err := ledger.Refresh(ctx, userID)
	require.NoError(t, err)

	c := cart.New(&memoryStore{data: map[string]string{}}, "cart:"+userID.String(), logger)
	identity := staticIdentity{identity: model.Identity{UserID: userID, Role: model.RoleClient}, ok: signedIn}

	f := &fixture{
		ctx:    ctx,
		userID: userID,
		cart:   c,
		store:  store,
		ledger: ledger,
	}
	f.workflow = NewWorkflow(c, ledger, identity, logger)
	f.workflow.SetObserver(func(from, to State) {
		f.states = append(f.states, to)
	})
	return f
}

func (f *fixture) add(price string) {
	f.cart.Add(f.ctx, model.MenuItem{ID: 1, Name: "Dish", Price: decimal.RequireFromString(price), Available: true})
}

func TestComputeQuote(t *testing.T) {
	entries := func(prices ...string) []model.CartEntry {
		out := make([]model.CartEntry, 0, len(prices))
		for _, p := range prices {
			out = append(out, model.CartEntry{Price: decimal.RequireFromString(p)})
		}
		return out
	}

	tests := []struct {
		name             string
		entries          []model.CartEntry
		balance          int64
		useLoyalty       bool
		expectedSubtotal string
		expectedFee      string
		expectedDiscount string
		expectedTotal    string
		expectedPoints   int64
	}{
		{
			name:             "Reference scenario",
			entries:          entries("12.0", "8.0"),
			balance:          40,
			useLoyalty:       true,
			expectedSubtotal: "20",
			expectedFee:      "1.5",
			expectedDiscount: "8",
			expectedTotal:    "13.5",
			expectedPoints:   2,
		},
		{
			name:             "Loyalty not used",
			entries:          entries("12.0", "8.0"),
			balance:          40,
			useLoyalty:       false,
			expectedSubtotal: "20",
			expectedFee:      "1.5",
			expectedDiscount: "0",
			expectedTotal:    "21.5",
			expectedPoints:   2,
		},
		{
			name:             "Empty cart",
			entries:          nil,
			balance:          40,
			useLoyalty:       false,
			expectedSubtotal: "0",
			expectedFee:      "0",
			expectedDiscount: "0",
			expectedTotal:    "0",
			expectedPoints:   0,
		},
		{
			name:             "Discount larger than order is not clamped",
			entries:          entries("3.00"),
			balance:          100,
			useLoyalty:       true,
			expectedSubtotal: "3",
			expectedFee:      "1.5",
			expectedDiscount: "20",
			expectedTotal:    "-15.5",
			expectedPoints:   0,
		},
		{
			name:             "Partial voucher ignored",
			entries:          entries("23.0"),
			balance:          19,
			useLoyalty:       true,
			expectedSubtotal: "23",
			expectedFee:      "1.5",
			expectedDiscount: "0",
			expectedTotal:    "24.5",
			expectedPoints:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ComputeQuote(tt.entries, tt.balance, tt.useLoyalty)

			assert.Equal(t, tt.expectedSubtotal, q.Subtotal.String())
			assert.Equal(t, tt.expectedFee, q.ServiceFee.String())
			assert.Equal(t, tt.expectedDiscount, q.LoyaltyDiscount.String())
			assert.Equal(t, tt.expectedTotal, q.Total.String())
			assert.Equal(t, tt.expectedPoints, q.PointsEarned)
			assert.Equal(t, tt.balance, q.PointsAvailable)
			assert.Equal(t, len(tt.entries), q.ItemCount)
		})
	}
}

func TestWorkflow_CheckoutSuccess(t *testing.T) {
	f := newFixture(t, true, 40)
	f.add("12.0")
	f.add("8.0")
	f.store.On("AddTokens", f.ctx, f.userID, int64(2)).Return(nil)

	receipt, err := f.workflow.Checkout(f.ctx, true)

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "13.5", receipt.Quote.Total.String())
	assert.Equal(t, int64(2), receipt.PointsEarned)
	assert.Equal(t, int64(42), receipt.Balance)
	assert.Equal(t, int64(42), f.ledger.CurrentBalance())
	assert.Equal(t, 0, f.cart.Len())
	assert.Equal(t, StateIdle, f.workflow.State())
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateSuccess, StateIdle}, f.states)

	f.store.AssertExpectations(t)
}

func TestWorkflow_CheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, true, 40)

	receipt, err := f.workflow.Checkout(f.ctx, false)

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, model.ErrCartEmpty)
	kind, _ := model.KindOf(err)
	assert.Equal(t, model.KindValidation, kind)
	assert.Equal(t, []State{StateValidating, StateFailed, StateIdle}, f.states)
	f.store.AssertNotCalled(t, "AddTokens", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_CheckoutZeroPricedItems(t *testing.T) {
	f := newFixture(t, true, 0)
	f.add("0")

	_, err := f.workflow.Checkout(f.ctx, false)

	assert.ErrorIs(t, err, model.ErrCartEmpty)
	assert.Equal(t, 1, f.cart.Len())
	f.store.AssertNotCalled(t, "AddTokens", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_CheckoutUnauthenticated(t *testing.T) {
	f := newFixture(t, false, 0)
	f.add("15.0")

	_, err := f.workflow.Checkout(f.ctx, false)

	assert.ErrorIs(t, err, model.ErrUnauthenticated)
	assert.Equal(t, 1, f.cart.Len())
	assert.Equal(t, StateIdle, f.workflow.State())
	f.store.AssertNotCalled(t, "AddTokens", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_CheckoutRemoteFailureThenRetry(t *testing.T) {
	f := newFixture(t, true, 10)
	f.add("25.0")
	f.store.On("AddTokens", f.ctx, f.userID, int64(2)).Return(errors.New("network unreachable")).Once()
	f.store.On("AddTokens", f.ctx, f.userID, int64(2)).Return(nil).Once()

	_, err := f.workflow.Checkout(f.ctx, false)

	require.Error(t, err)
	kind, _ := model.KindOf(err)
	assert.Equal(t, model.KindRemote, kind)
	assert.Contains(t, err.Error(), "network unreachable")
	assert.Equal(t, 1, f.cart.Len())
	assert.Equal(t, int64(10), f.ledger.CurrentBalance())
	assert.Equal(t, StateIdle, f.workflow.State())

	receipt, err := f.workflow.Checkout(f.ctx, false)

	require.NoError(t, err)
	assert.Equal(t, int64(12), receipt.Balance)
	assert.Equal(t, 0, f.cart.Len())
	f.store.AssertExpectations(t)
}

func TestWorkflow_CheckoutInProgress(t *testing.T) {
	f := newFixture(t, true, 0)
	f.add("30.0")

	entered := make(chan struct{})
	release := make(chan struct{})
	f.store.On("AddTokens", f.ctx, f.userID, int64(3)).
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.workflow.Checkout(f.ctx, false)
		done <- err
	}()

	<-entered
	_, err := f.workflow.Checkout(f.ctx, false)
	assert.ErrorIs(t, err, model.ErrCheckoutInProgress)

	close(release)
	require.NoError(t, <-done)
	f.store.AssertExpectations(t)
}

func TestWorkflow_CheckoutKeepsDishAddedDuringSubmission(t *testing.T) {
	f := newFixture(t, true, 0)
	f.add("12.0")
	f.add("8.0")
	f.store.On("AddTokens", f.ctx, f.userID, int64(2)).
		Run(func(args mock.Arguments) {
			f.cart.Add(f.ctx, model.MenuItem{ID: 9, Name: "Couscous", Price: decimal.RequireFromString("30"), Available: true})
		}).
		Return(nil).Once()

	receipt, err := f.workflow.Checkout(f.ctx, false)

	require.NoError(t, err)
	assert.Equal(t, "20", receipt.Quote.Subtotal.String())
	require.Equal(t, 1, f.cart.Len())
	assert.Equal(t, int64(9), f.cart.Entries()[0].ItemID)
	f.store.AssertExpectations(t)
}
