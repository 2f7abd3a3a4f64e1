package repository

import (
	"context"
	"testing"
	"time"

	"resto-collect/internal/database/dbtest"
	"resto-collect/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRepository_Integration(t *testing.T) {
	db := dbtest.Setup(t)
	clients := NewClientRepository(db.Pool, zerolog.Nop())
	repo := NewScanRepository(db.Pool, zerolog.Nop())
	ctx := context.Background()

	db.Cleanup(t)
	ana := newClient("ana@example.com", model.RoleClient)
	require.NoError(t, clients.Create(ctx, ana))

	scan := &model.FidelityScan{
		ClientID:   ana.ID,
		PurchaseID: "A-1042",
		Points:     5,
		BalanceID:  "B-7",
		IssuedAt:   "2024-05-01",
		ScannedAt:  time.Now().UTC(),
	}

	require.NoError(t, repo.InsertScan(ctx, scan))
	assert.NotZero(t, scan.ID)

	var count int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM fidelity_scans WHERE client_id = $1`, ana.ID).Scan(&count))
	assert.Equal(t, 1, count)

	tokens, err := clients.GetTokens(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tokens)
}
