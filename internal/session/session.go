package session

import (
	"context"
	"sync"

	"resto-collect/internal/cart"
	"resto-collect/internal/checkout"
	"resto-collect/internal/localstore"
	"resto-collect/internal/loyalty"
	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session is the context object of one signed-in user.
type Session struct {
	Provider *Provider
	Cart     *cart.Cart
	Ledger   *loyalty.Ledger
	Checkout *checkout.Workflow

	// restored is closed once the persisted cart has been loaded.
	restored chan struct{}
	cancel   func()
}

// Identity returns the identity the session was opened for.
func (s *Session) Identity() (model.Identity, bool) {
	return s.Provider.Current()
}

// Manager owns the sessions of all connected users.
type Manager struct {
	store    localstore.Store
	balances loyalty.BalanceStore
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty session manager.
func NewManager(store localstore.Store, balances loyalty.BalanceStore, logger zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		balances: balances,
		logger:   logger.With().Str("component", "session-manager").Logger(),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Acquire returns the session of identity, creating it on first use. A new
// session restores the persisted cart and fetches the loyalty balance; a
// failed fetch leaves the balance at zero and is only logged. Concurrent
// callers for a new session wait until its cart is restored.
func (m *Manager) Acquire(ctx context.Context, identity model.Identity) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[identity.UserID]; ok {
		m.mu.Unlock()
		<-s.restored
		return s
	}

	s := m.newSession(identity)
	m.sessions[identity.UserID] = s
	m.mu.Unlock()

	s.Cart.Restore(ctx)
	close(s.restored)

	if _, err := s.Ledger.Refresh(ctx, identity.UserID); err != nil {
		m.logger.Warn().Err(err).Str("user_id", identity.UserID.String()).Msg("session opened without loyalty balance")
	}

	m.logger.Debug().
		Str("user_id", identity.UserID.String()).
		Int("cart_size", s.Cart.Len()).
		Msg("session opened")

	return s
}

// Get returns the live session of userID, if any.
func (m *Manager) Get(userID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// End signs the user out and drops their session. The persisted cart is kept
// so it comes back on the next sign-in.
func (m *Manager) End(userID uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if !ok {
		return
	}

	s.Provider.SignOut()
	s.cancel()

	m.logger.Debug().Str("user_id", userID.String()).Msg("session ended")
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) newSession(identity model.Identity) *Session {
	logger := m.logger.With().Str("user_id", identity.UserID.String()).Logger()

	provider := NewProvider()
	c := cart.New(m.store, cart.KeyPrefix+identity.UserID.String(), logger)
	ledger := loyalty.NewLedger(m.balances, logger)
	workflow := checkout.NewWorkflow(c, ledger, provider, logger)
	workflow.SetObserver(func(from, to checkout.State) {
		logger.Debug().Str("from", from.String()).Str("to", to.String()).Msg("checkout transition")
	})

	cancel := provider.OnChange(func(_ model.Identity, signedIn bool) {
		if !signedIn {
			ledger.Reset()
		}
	})
	provider.SignIn(identity)

	return &Session{
		Provider: provider,
		Cart:     c,
		Ledger:   ledger,
		Checkout: workflow,
		restored: make(chan struct{}),
		cancel:   cancel,
	}
}
