package model

import (
	"time"

	"github.com/google/uuid"
)

// FidelityScan records points collected by scanning a till receipt QR code.
type FidelityScan struct {
	ID         int64     `json:"id" db:"id"`
	ClientID   uuid.UUID `json:"clientId" db:"client_id"`
	PurchaseID string    `json:"purchaseId" db:"purchase_id"`
	Points     int64     `json:"points" db:"points"`
	BalanceID  string    `json:"balanceId" db:"balance_id"`
	IssuedAt   string    `json:"issuedAt" db:"issued_at"`
	ScannedAt  time.Time `json:"scannedAt" db:"scanned_at"`
}

// ScanRequest carries the raw text decoded from a QR code.
type ScanRequest struct {
	Payload string `json:"payload"`
}

// BalanceResponse reports the loyalty balance of the signed-in client.
type BalanceResponse struct {
	Balance          int64 `json:"balance"`
	RedemptionValue  int64 `json:"redemptionValue"`
	PointsPerVoucher int64 `json:"pointsPerVoucher"`
}
