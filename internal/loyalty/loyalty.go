// Package loyalty keeps the session's view of a client's point balance and
// implements the earning and redemption rules.
package loyalty

import (
	"context"
	"sync"

	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// SpendPerPoint is the subtotal that earns one point.
	SpendPerPoint = 10
	// PointsPerVoucher is the block size points are redeemed in.
	PointsPerVoucher = 20
	// VoucherValue is the discount granted per redeemed block.
	VoucherValue = 4
)

// BalanceStore is the remote record of loyalty balances.
type BalanceStore interface {
	// GetTokens returns the balance of a client.
	GetTokens(ctx context.Context, clientID uuid.UUID) (int64, error)

	// AddTokens atomically increments the balance of a client on the server.
	AddTokens(ctx context.Context, clientID uuid.UUID, amount int64) error
}

// EarnedFor returns the points earned for an order subtotal.
func EarnedFor(subtotal decimal.Decimal) int64 {
	if subtotal.IsNegative() {
		return 0
	}
	return subtotal.Div(decimal.NewFromInt(SpendPerPoint)).Floor().IntPart()
}

// RedemptionPreview returns the discount the balance would grant. It never
// debits anything.
func RedemptionPreview(balance int64, enabled bool) int64 {
	if !enabled || balance <= 0 {
		return 0
	}
	return (balance / PointsPerVoucher) * VoucherValue
}

// Ledger mirrors the remote balance of the session owner.
type Ledger struct {
	mu      sync.Mutex
	balance int64
	store   BalanceStore
	logger  zerolog.Logger
}

// NewLedger creates a ledger with a zero balance.
func NewLedger(store BalanceStore, logger zerolog.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger.With().Str("component", "loyalty-ledger").Logger(),
	}
}

// CurrentBalance returns the last balance fetched or credited.
func (l *Ledger) CurrentBalance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Refresh fetches the balance of clientID. On failure the previous value is kept.
func (l *Ledger) Refresh(ctx context.Context, clientID uuid.UUID) (int64, error) {
	tokens, err := l.store.GetTokens(ctx, clientID)
	if err != nil {
		l.logger.Warn().Err(err).Str("client_id", clientID.String()).Msg("failed to fetch loyalty balance")
		return l.CurrentBalance(), model.NewRemoteFailure("failed to fetch loyalty balance", err)
	}

	l.mu.Lock()
	l.balance = tokens
	l.mu.Unlock()

	return tokens, nil
}

// Credit adds amount points on the server, then to the local mirror.
func (l *Ledger) Credit(ctx context.Context, clientID uuid.UUID, amount int64) error {
	if err := l.store.AddTokens(ctx, clientID, amount); err != nil {
		l.logger.Error().
			Err(err).
			Str("client_id", clientID.String()).
			Int64("amount", amount).
			Msg("failed to credit loyalty points")
		return model.NewRemoteFailure("failed to update loyalty points", err)
	}

	l.mu.Lock()
	l.balance += amount
	balance := l.balance
	l.mu.Unlock()

	l.logger.Info().
		Str("client_id", clientID.String()).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("loyalty points credited")

	return nil
}

// Reset zeroes the mirror, e.g. on sign-out.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = 0
}
