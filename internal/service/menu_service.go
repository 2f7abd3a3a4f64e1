package service

import (
	"context"
	"fmt"

	"resto-collect/internal/feed"
	"resto-collect/internal/model"
	"resto-collect/internal/realtime"
	"resto-collect/internal/repository"

	"github.com/rs/zerolog"
)

// MenuCollection is the table the menu feeds listen to.
const MenuCollection = "menu_items"

// menuService implements MenuService.
type menuService struct {
	menuRepo repository.MenuRepository
	catalog  *feed.Store[model.MenuItem]
	hub      realtime.Subscriber
	logger   zerolog.Logger
}

// NewMenuService creates a new menu service. catalog is the shared store
// backing List; it is created from menuRepo when nil.
func NewMenuService(menuRepo repository.MenuRepository, catalog *feed.Store[model.MenuItem], hub realtime.Subscriber, logger zerolog.Logger) MenuService {
	s := &menuService{
		menuRepo: menuRepo,
		hub:      hub,
		logger:   logger.With().Str("service", "menu").Logger(),
	}
	if catalog == nil {
		catalog = s.LiveFeed()
	}
	s.catalog = catalog
	return s
}

// NewCatalog creates the menu feed: every dish by ascending price, refreshed
// on each insert, update or delete of menu_items.
func NewCatalog(menuRepo repository.MenuRepository, hub realtime.Subscriber, logger zerolog.Logger) *feed.Store[model.MenuItem] {
	return feed.New("catalog", menuRepo.List, hub, feed.Topic{
		Collection: MenuCollection,
		Kind:       realtime.EventAny,
	}, logger)
}

// List returns the cached catalog, loading it on first use.
func (s *menuService) List(ctx context.Context) ([]model.MenuItem, error) {
	items := s.catalog.Items()
	if len(items) > 0 {
		return items, nil
	}

	if err := s.catalog.Refresh(ctx, true); err != nil {
		s.logger.Error().Err(err).Msg("failed to load menu")
		return nil, model.NewRemoteFailure("failed to load menu", err)
	}

	return s.catalog.Items(), nil
}

// Sections returns the catalog grouped by category.
func (s *menuService) Sections(ctx context.Context) ([]model.MenuSection, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return model.GroupByCategory(items), nil
}

// Get retrieves a single dish from the database.
func (s *menuService) Get(ctx context.Context, id int64) (*model.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_item_id", id).Msg("failed to get menu item")
		return nil, model.NewRemoteFailure("failed to get menu item", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}
	return item, nil
}

// SetAvailability switches a dish on or off.
func (s *menuService) SetAvailability(ctx context.Context, identity model.Identity, id int64, available bool) (*model.MenuItem, error) {
	if !identity.IsChef() {
		s.logger.Warn().
			Str("user_id", identity.UserID.String()).
			Int64("menu_item_id", id).
			Msg("availability change refused")
		return nil, model.ErrForbidden
	}

	item, err := s.menuRepo.SetAvailability(ctx, id, available)
	if err != nil {
		if kind, ok := model.KindOf(err); ok && kind == model.KindNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set availability: %w", err)
	}

	if err := s.catalog.Refresh(ctx, false); err != nil {
		s.logger.Warn().Err(err).Msg("catalog refresh after availability change failed")
	}

	return item, nil
}

// LiveFeed returns a new, detached catalog feed.
func (s *menuService) LiveFeed() *feed.Store[model.MenuItem] {
	return NewCatalog(s.menuRepo, s.hub, s.logger)
}
