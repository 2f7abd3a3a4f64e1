package service

import (
	"context"
	"errors"
	"testing"

	"resto-collect/internal/loyalty"
	"resto-collect/internal/model"
	"resto-collect/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyService_Balance(t *testing.T) {
	clientRepo := new(MockClientRepository)
	clientRepo.On("GetTokens", mock.Anything, client.UserID).Return(int64(45), nil)
	sessions := session.NewManager(newMemoryStore(), clientRepo, zerolog.Nop())
	svc := NewLoyaltyService(sessions, loyalty.NewScanner(new(MockScanRepository), zerolog.Nop()), zerolog.Nop())

	resp, err := svc.Balance(context.Background(), client)

	require.NoError(t, err)
	assert.Equal(t, int64(45), resp.Balance)
	assert.Equal(t, int64(8), resp.RedemptionValue)
	assert.Equal(t, int64(loyalty.PointsPerVoucher), resp.PointsPerVoucher)
}

func TestLoyaltyService_BalanceFailure(t *testing.T) {
	clientRepo := new(MockClientRepository)
	clientRepo.On("GetTokens", mock.Anything, client.UserID).Return(int64(0), errors.New("timeout"))
	sessions := session.NewManager(newMemoryStore(), clientRepo, zerolog.Nop())
	svc := NewLoyaltyService(sessions, loyalty.NewScanner(new(MockScanRepository), zerolog.Nop()), zerolog.Nop())

	resp, err := svc.Balance(context.Background(), client)

	assert.Nil(t, resp)
	kind, _ := model.KindOf(err)
	assert.Equal(t, model.KindRemote, kind)
}

func TestLoyaltyService_Scan(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		payload       string
		setupMock     func(*MockScanRepository)
		expectedError error
		expectedScan  *model.FidelityScan
	}{
		{
			name:    "Records the scan",
			payload: `{"achat_id": 981, "points": 6, "balance_id": "B-12", "date": "2024-05-02"}`,
			setupMock: func(m *MockScanRepository) {
				m.On("InsertScan", mock.Anything, mock.MatchedBy(func(s *model.FidelityScan) bool {
					return s.ClientID == client.UserID && s.PurchaseID == "981"
				})).Return(nil)
			},
			expectedScan: &model.FidelityScan{PurchaseID: "981", Points: 6, BalanceID: "B-12", IssuedAt: "2024-05-02"},
		},
		{
			name:          "Empty payload",
			payload:       "",
			setupMock:     func(*MockScanRepository) {},
			expectedError: model.NewMissingField(""),
		},
		{
			name:          "Not JSON",
			payload:       "https://example.com/receipt",
			setupMock:     func(*MockScanRepository) {},
			expectedError: model.NewMalformedData("", nil),
		},
		{
			name:    "Database error",
			payload: `{"achat_id": "A1", "points": 2}`,
			setupMock: func(m *MockScanRepository) {
				m.On("InsertScan", mock.Anything, mock.Anything).Return(errors.New("unique violation"))
			},
			expectedError: model.NewRemoteFailure("", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scans := new(MockScanRepository)
			tt.setupMock(scans)
			sessions := session.NewManager(newMemoryStore(), new(MockClientRepository), zerolog.Nop())
			svc := NewLoyaltyService(sessions, loyalty.NewScanner(scans, zerolog.Nop()), zerolog.Nop())

			scan, err := svc.Scan(ctx, client, tt.payload)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, scan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedScan.PurchaseID, scan.PurchaseID)
			assert.Equal(t, tt.expectedScan.Points, scan.Points)
			assert.Equal(t, tt.expectedScan.BalanceID, scan.BalanceID)
			assert.Equal(t, tt.expectedScan.IssuedAt, scan.IssuedAt)
			assert.False(t, scan.ScannedAt.IsZero())
			scans.AssertExpectations(t)
		})
	}
}
