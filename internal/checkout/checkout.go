// Package checkout runs the pay flow: validate the cart, credit the loyalty
// points earned, then remove the paid dishes from the cart.
package checkout

import (
	"context"
	"errors"
	"sync"

	"resto-collect/internal/cart"
	"resto-collect/internal/loyalty"
	"resto-collect/internal/metrics"
	"resto-collect/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ServiceFee is charged on every non-empty cart.
var ServiceFee = decimal.RequireFromString("1.5")

// State is a step of the checkout workflow.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IdentitySource resolves who is paying.
type IdentitySource interface {
	Current() (model.Identity, bool)
}

// Observer is notified of every state transition.
type Observer func(from, to State)

// Workflow orchestrates a checkout for one session.
type Workflow struct {
	cart     *cart.Cart
	ledger   *loyalty.Ledger
	identity IdentitySource
	observer Observer
	logger   zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewWorkflow creates an idle workflow.
func NewWorkflow(c *cart.Cart, ledger *loyalty.Ledger, identity IdentitySource, logger zerolog.Logger) *Workflow {
	return &Workflow{
		cart:     c,
		ledger:   ledger,
		identity: identity,
		logger:   logger.With().Str("component", "checkout").Logger(),
	}
}

// SetObserver installs a transition observer. It must be called before the
// workflow is shared.
func (w *Workflow) SetObserver(o Observer) {
	w.observer = o
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Quote prices the current cart against the current loyalty balance.
func (w *Workflow) Quote(useLoyalty bool) model.Quote {
	return ComputeQuote(w.cart.Entries(), w.ledger.CurrentBalance(), useLoyalty)
}

// ComputeQuote prices entries. The final total is not clamped at zero.
func ComputeQuote(entries []model.CartEntry, balance int64, useLoyalty bool) model.Quote {
	subtotal := cart.Sum(entries)

	fee := decimal.Zero
	if len(entries) > 0 {
		fee = ServiceFee
	}

	discount := decimal.NewFromInt(loyalty.RedemptionPreview(balance, useLoyalty))

	return model.Quote{
		Subtotal:        subtotal,
		ServiceFee:      fee,
		LoyaltyDiscount: discount,
		Total:           subtotal.Add(fee).Sub(discount),
		PointsEarned:    loyalty.EarnedFor(subtotal),
		PointsAvailable: balance,
		ItemCount:       len(entries),
	}
}

// Checkout pays for the cart. On failure the cart and balance are left as
// they were and the workflow returns to idle, ready for a retry.
//
// Redeemed points are not debited and a retried checkout whose first credit
// went through unacknowledged credits the points twice.
func (w *Workflow) Checkout(ctx context.Context, useLoyalty bool) (*model.Receipt, error) {
	w.mu.Lock()
	if state := w.state; state != StateIdle {
		w.mu.Unlock()
		w.logger.Warn().Str("state", state.String()).Msg("checkout already in progress")
		return nil, model.ErrCheckoutInProgress
	}
	w.transitionLocked(StateValidating)
	w.mu.Unlock()

	receipt, err := w.run(ctx, useLoyalty)

	outcome := StateSuccess
	if err != nil {
		outcome = StateFailed
	}
	w.transition(outcome)
	w.transition(StateIdle)

	metrics.Checkout().Observe(outcomeLabel(err), receipt)

	return receipt, err
}

func (w *Workflow) run(ctx context.Context, useLoyalty bool) (*model.Receipt, error) {
	entries := w.cart.Entries()
	quote := ComputeQuote(entries, w.ledger.CurrentBalance(), useLoyalty)
	if quote.Subtotal.IsZero() {
		w.logger.Debug().Msg("checkout rejected: cart empty")
		return nil, model.ErrCartEmpty
	}

	w.transition(StateSubmitting)

	identity, ok := w.identity.Current()
	if !ok {
		w.logger.Warn().Msg("checkout rejected: no authenticated user")
		return nil, model.ErrUnauthenticated
	}

	if err := w.ledger.Credit(ctx, identity.UserID, quote.PointsEarned); err != nil {
		return nil, err
	}

	// Only the priced entries are paid for; dishes added meanwhile stay.
	w.cart.Settle(ctx, entries)

	receipt := &model.Receipt{
		Quote:        quote,
		PointsEarned: quote.PointsEarned,
		Balance:      w.ledger.CurrentBalance(),
	}

	w.logger.Info().
		Str("user_id", identity.UserID.String()).
		Str("subtotal", quote.Subtotal.StringFixed(2)).
		Str("total", quote.Total.StringFixed(2)).
		Int64("points_earned", quote.PointsEarned).
		Bool("loyalty_used", useLoyalty).
		Msg("checkout completed")

	return receipt, nil
}

func (w *Workflow) transition(to State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.transitionLocked(to)
}

func (w *Workflow) transitionLocked(to State) {
	from := w.state
	w.state = to
	if w.observer != nil {
		w.observer(from, to)
	}
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var de *model.DomainError
	if errors.As(err, &de) {
		return de.Kind.String()
	}
	return "error"
}
