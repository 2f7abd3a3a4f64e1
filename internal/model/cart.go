package model

import "github.com/shopspring/decimal"

// CartEntry is a snapshot of a menu item taken when it was added to the cart.
type CartEntry struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
}

// NewCartEntry snapshots the fields of item that the cart keeps.
func NewCartEntry(item MenuItem) CartEntry {
	return CartEntry{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Category: item.Category,
	}
}

// AddToCartRequest represents the request payload for adding a menu item to the cart.
type AddToCartRequest struct {
	ItemID int64 `json:"itemId"`
}

// CartResponse represents the cart contents together with the current quote.
type CartResponse struct {
	Entries []CartEntry `json:"entries"`
	Quote   Quote       `json:"quote"`
}
