package service

import (
	"context"

	"resto-collect/internal/loyalty"
	"resto-collect/internal/model"
	"resto-collect/internal/session"

	"github.com/rs/zerolog"
)

// loyaltyService implements LoyaltyService.
type loyaltyService struct {
	sessions *session.Manager
	scanner  *loyalty.Scanner
	logger   zerolog.Logger
}

// NewLoyaltyService creates a new loyalty service.
func NewLoyaltyService(sessions *session.Manager, scanner *loyalty.Scanner, logger zerolog.Logger) LoyaltyService {
	return &loyaltyService{
		sessions: sessions,
		scanner:  scanner,
		logger:   logger.With().Str("service", "loyalty").Logger(),
	}
}

// Balance fetches the current balance. A failed fetch reports the previous value.
func (s *loyaltyService) Balance(ctx context.Context, identity model.Identity) (*model.BalanceResponse, error) {
	sess := s.sessions.Acquire(ctx, identity)

	balance, err := sess.Ledger.Refresh(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	return &model.BalanceResponse{
		Balance:          balance,
		RedemptionValue:  loyalty.RedemptionPreview(balance, true),
		PointsPerVoucher: loyalty.PointsPerVoucher,
	}, nil
}

// Scan records a scanned receipt QR code.
func (s *loyaltyService) Scan(ctx context.Context, identity model.Identity, payload string) (*model.FidelityScan, error) {
	if payload == "" {
		return nil, model.NewMissingField("payload is required")
	}
	return s.scanner.Record(ctx, identity.UserID, payload)
}
