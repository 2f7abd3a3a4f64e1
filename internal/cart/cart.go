// Package cart holds the per-session shopping cart and mirrors it to the
// durable local store.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"resto-collect/internal/localstore"
	"resto-collect/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// KeyPrefix prefixes the local store key of every cart.
const KeyPrefix = "cart:"

// Cart is an ordered list of menu item snapshots. Duplicates are allowed.
// The in-memory sequence is authoritative; the local store is a mirror.
type Cart struct {
	mu      sync.Mutex
	entries []model.CartEntry
	store   localstore.Store
	key     string
	logger  zerolog.Logger
}

// New creates an empty cart persisted under key in store.
func New(store localstore.Store, key string, logger zerolog.Logger) *Cart {
	return &Cart{
		store:  store,
		key:    key,
		logger: logger.With().Str("component", "cart").Str("cart_key", key).Logger(),
	}
}

// Add appends a snapshot of item and persists the cart.
func (c *Cart) Add(ctx context.Context, item model.MenuItem) model.CartEntry {
	entry := model.NewCartEntry(item)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, entry)
	c.persistLocked(ctx)

	c.logger.Debug().
		Int64("item_id", item.ID).
		Int("count", len(c.entries)).
		Msg("item added to cart")

	return entry
}

// RemoveAt removes the entry at index. An out-of-range index leaves the cart
// untouched and returns model.ErrInvalidCartIndex.
func (c *Cart) RemoveAt(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.entries) {
		c.logger.Warn().
			Int("index", index).
			Int("count", len(c.entries)).
			Msg("cart index out of range")
		return model.ErrInvalidCartIndex
	}

	updated := make([]model.CartEntry, 0, len(c.entries)-1)
	updated = append(updated, c.entries[:index]...)
	updated = append(updated, c.entries[index+1:]...)
	c.entries = updated
	c.persistLocked(ctx)

	return nil
}

// Clear empties the cart and deletes its durable copy.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	if err := c.store.Remove(ctx, c.key); err != nil {
		c.logger.Warn().Err(err).Msg("failed to remove persisted cart")
	}
}

// Settle removes one entry matching each of paid, leaving entries added since
// paid was taken in place. It returns the number of entries removed.
func (c *Cart) Settle(ctx context.Context, paid []model.CartEntry) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := make([]model.CartEntry, 0, len(c.entries))
	removed := 0
	pending := append([]model.CartEntry(nil), paid...)
	for _, e := range c.entries {
		if i := indexOf(pending, e); i >= 0 {
			pending = append(pending[:i], pending[i+1:]...)
			removed++
			continue
		}
		remaining = append(remaining, e)
	}

	if len(remaining) == 0 {
		c.entries = nil
		if err := c.store.Remove(ctx, c.key); err != nil {
			c.logger.Warn().Err(err).Msg("failed to remove persisted cart")
		}
	} else {
		c.entries = remaining
		c.persistLocked(ctx)
	}

	c.logger.Debug().
		Int("removed", removed).
		Int("count", len(c.entries)).
		Msg("cart settled")

	return removed
}

func indexOf(entries []model.CartEntry, e model.CartEntry) int {
	for i, p := range entries {
		if p.ItemID == e.ItemID && p.Name == e.Name && p.Category == e.Category && p.Price.Equal(e.Price) {
			return i
		}
	}
	return -1
}

// Restore replaces the in-memory cart with the durable copy. A missing or
// unreadable copy restores an empty cart.
func (c *Cart) Restore(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil

	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read persisted cart, starting empty")
		return
	}
	if !ok || raw == "" {
		return
	}

	var entries []model.CartEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.Warn().Err(err).Msg("persisted cart is malformed, starting empty")
		return
	}
	c.entries = entries

	c.logger.Debug().Int("count", len(entries)).Msg("cart restored")
}

// Total returns the sum of entry prices.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Sum(c.entries)
}

// Entries returns a copy of the cart contents.
func (c *Cart) Entries() []model.CartEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Sum adds up the prices of entries.
func Sum(entries []model.CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Price)
	}
	return total
}

func (c *Cart) persistLocked(ctx context.Context) {
	data, err := json.Marshal(c.entries)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to encode cart")
		return
	}
	if err := c.store.Set(ctx, c.key, string(data)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist cart")
	}
}
