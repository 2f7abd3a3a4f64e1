package repository

import (
	"context"
	"errors"
	"fmt"

	"resto-collect/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const menuColumns = `id, name, description, price, category, available, image_url, created_at`

// menuRepository implements the MenuRepository interface using PostgreSQL.
type menuRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMenuRepository creates a new PostgreSQL-backed menu repository.
func NewMenuRepository(pool *pgxpool.Pool, logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "menu").Logger(),
	}
}

// List retrieves every menu item ordered by ascending price.
func (r *menuRepository) List(ctx context.Context) ([]model.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items ORDER BY price, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query menu items")
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []model.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu item rows")
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	return items, nil
}

// GetByID retrieves a single menu item by its ID.
func (r *menuRepository) GetByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`

	item, err := scanMenuItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("menu_item_id", id).Msg("menu item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("menu_item_id", id).Msg("failed to query menu item")
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}

	return item, nil
}

// SetAvailability switches a dish on or off for the day.
func (r *menuRepository) SetAvailability(ctx context.Context, id int64, available bool) (*model.MenuItem, error) {
	query := `UPDATE menu_items SET available = $2 WHERE id = $1 RETURNING ` + menuColumns

	item, err := scanMenuItem(r.pool.QueryRow(ctx, query, id, available))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrMenuItemNotFound
		}
		r.logger.Error().Err(err).Int64("menu_item_id", id).Msg("failed to update availability")
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	r.logger.Info().
		Int64("menu_item_id", id).
		Bool("available", available).
		Msg("menu item availability updated")

	return item, nil
}

// Upsert inserts a menu item or updates the one with the same name.
func (r *menuRepository) Upsert(ctx context.Context, item *model.MenuItem) error {
	query := `
		INSERT INTO menu_items (name, description, price, category, available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			available = EXCLUDED.available,
			image_url = EXCLUDED.image_url
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		item.Name, item.Description, item.Price, item.Category, item.Available, item.ImageURL,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", item.Name).Msg("failed to upsert menu item")
		return fmt.Errorf("failed to upsert menu item %s: %w", item.Name, err)
	}

	return nil
}

func scanMenuItem(row pgx.Row) (*model.MenuItem, error) {
	var (
		item      model.MenuItem
		available *bool
	)
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Category,
		&available,
		&item.ImageURL,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Available = model.NormalizeAvailability(available)
	return &item, nil
}
