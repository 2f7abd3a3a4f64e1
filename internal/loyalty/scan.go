package loyalty

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ScanRepository persists fidelity scans.
type ScanRepository interface {
	InsertScan(ctx context.Context, scan *model.FidelityScan) error
}

// qrPayload is the JSON printed in the till receipt QR code.
type qrPayload struct {
	PurchaseID json.RawMessage `json:"achat_id"`
	Points     int64           `json:"points"`
	BalanceID  json.RawMessage `json:"balance_id"`
	Date       string          `json:"date"`
}

// ParseScan decodes a QR payload into a scan for clientID.
func ParseScan(raw string, clientID uuid.UUID) (*model.FidelityScan, error) {
	var p qrPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &p); err != nil {
		return nil, model.NewMalformedData("QR code is invalid or malformed", err)
	}

	purchaseID := rawID(p.PurchaseID)
	if purchaseID == "" {
		return nil, model.NewMalformedData("QR code is invalid or malformed", fmt.Errorf("missing purchase id"))
	}
	if p.Points < 0 {
		return nil, model.NewMalformedData("QR code is invalid or malformed", fmt.Errorf("negative points: %d", p.Points))
	}

	return &model.FidelityScan{
		ClientID:   clientID,
		PurchaseID: purchaseID,
		Points:     p.Points,
		BalanceID:  rawID(p.BalanceID),
		IssuedAt:   p.Date,
	}, nil
}

// rawID accepts identifiers printed either as JSON strings or numbers.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// Scanner records QR code scans.
type Scanner struct {
	repo   ScanRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewScanner creates a new scan recorder.
func NewScanner(repo ScanRepository, logger zerolog.Logger) *Scanner {
	return &Scanner{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "loyalty-scanner").Logger(),
	}
}

// Record parses raw and stores the resulting scan.
func (s *Scanner) Record(ctx context.Context, clientID uuid.UUID, raw string) (*model.FidelityScan, error) {
	scan, err := ParseScan(raw, clientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("client_id", clientID.String()).Msg("rejected QR payload")
		return nil, err
	}
	scan.ScannedAt = s.now().UTC()

	if err := s.repo.InsertScan(ctx, scan); err != nil {
		s.logger.Error().Err(err).Str("purchase_id", scan.PurchaseID).Msg("failed to record scan")
		return nil, model.NewRemoteFailure("failed to record loyalty points", err)
	}

	s.logger.Info().
		Str("client_id", clientID.String()).
		Str("purchase_id", scan.PurchaseID).
		Int64("points", scan.Points).
		Msg("loyalty scan recorded")

	return scan, nil
}
