package model

import "github.com/shopspring/decimal"

// Quote is the price breakdown of the current cart. It is recomputed on
// every cart change and consumed once at checkout.
type Quote struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	ServiceFee      decimal.Decimal `json:"serviceFee"`
	LoyaltyDiscount decimal.Decimal `json:"loyaltyDiscount"`
	Total           decimal.Decimal `json:"total"`
	PointsEarned    int64           `json:"pointsEarned"`
	PointsAvailable int64           `json:"pointsAvailable"`
	ItemCount       int             `json:"itemCount"`
}

// CheckoutRequest represents the request payload for paying the cart.
type CheckoutRequest struct {
	UseLoyalty bool `json:"useLoyalty"`
}

// Receipt is returned after a successful checkout.
type Receipt struct {
	Quote        Quote `json:"quote"`
	PointsEarned int64 `json:"pointsEarned"`
	Balance      int64 `json:"balance"`
}
