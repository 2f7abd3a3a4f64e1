package service

import (
	"context"

	"resto-collect/internal/model"
	"resto-collect/internal/session"

	"github.com/rs/zerolog"
)

// cartService implements CartService on top of the user sessions.
type cartService struct {
	sessions *session.Manager
	menu     MenuService
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(sessions *session.Manager, menu MenuService, logger zerolog.Logger) CartService {
	return &cartService{
		sessions: sessions,
		menu:     menu,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// View returns the cart and its quote.
func (s *cartService) View(ctx context.Context, identity model.Identity, useLoyalty bool) (*model.CartResponse, error) {
	sess := s.sessions.Acquire(ctx, identity)
	return s.response(sess, useLoyalty), nil
}

// Add appends an available dish to the cart.
func (s *cartService) Add(ctx context.Context, identity model.Identity, itemID int64) (*model.CartResponse, error) {
	if itemID <= 0 {
		return nil, model.NewMissingField("itemId is required")
	}

	item, err := s.menu.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		s.logger.Debug().Int64("menu_item_id", itemID).Msg("refusing unavailable item")
		return nil, model.ErrItemUnavailable
	}

	sess := s.sessions.Acquire(ctx, identity)
	sess.Cart.Add(ctx, *item)

	s.logger.Debug().
		Str("user_id", identity.UserID.String()).
		Int64("menu_item_id", itemID).
		Int("cart_size", sess.Cart.Len()).
		Msg("item added to cart")

	return s.response(sess, false), nil
}

// Remove deletes the entry at index.
func (s *cartService) Remove(ctx context.Context, identity model.Identity, index int) (*model.CartResponse, error) {
	sess := s.sessions.Acquire(ctx, identity)
	if err := sess.Cart.RemoveAt(ctx, index); err != nil {
		return nil, err
	}
	return s.response(sess, false), nil
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, identity model.Identity) (*model.CartResponse, error) {
	sess := s.sessions.Acquire(ctx, identity)
	sess.Cart.Clear(ctx)
	return s.response(sess, false), nil
}

// Checkout pays for the cart.
func (s *cartService) Checkout(ctx context.Context, identity model.Identity, useLoyalty bool) (*model.Receipt, error) {
	sess := s.sessions.Acquire(ctx, identity)
	return sess.Checkout.Checkout(ctx, useLoyalty)
}

func (s *cartService) response(sess *session.Session, useLoyalty bool) *model.CartResponse {
	return &model.CartResponse{
		Entries: sess.Cart.Entries(),
		Quote:   sess.Checkout.Quote(useLoyalty),
	}
}
