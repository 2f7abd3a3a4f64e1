package repository

import (
	"context"
	"fmt"

	"resto-collect/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// scanRepository implements the ScanRepository interface using PostgreSQL.
type scanRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewScanRepository creates a new PostgreSQL-backed scan repository.
func NewScanRepository(pool *pgxpool.Pool, logger zerolog.Logger) ScanRepository {
	return &scanRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "fidelity_scan").Logger(),
	}
}

// InsertScan stores a scanned receipt and fills in its id.
func (r *scanRepository) InsertScan(ctx context.Context, scan *model.FidelityScan) error {
	query := `
		INSERT INTO fidelity_scans (client_id, purchase_id, points, balance_id, issued_at, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		scan.ClientID,
		scan.PurchaseID,
		scan.Points,
		scan.BalanceID,
		scan.IssuedAt,
		scan.ScannedAt,
	).Scan(&scan.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("client_id", scan.ClientID.String()).
			Str("purchase_id", scan.PurchaseID).
			Msg("failed to insert fidelity scan")
		return fmt.Errorf("failed to insert fidelity scan: %w", err)
	}

	return nil
}
