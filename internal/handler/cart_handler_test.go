package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"resto-collect/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCart() *model.CartResponse {
	return &model.CartResponse{
		Entries: []model.CartEntry{
			{ItemID: 1, Name: "Tajine", Price: decimal.RequireFromString("12")},
			{ItemID: 2, Name: "Harira", Price: decimal.RequireFromString("8")},
		},
		Quote: model.Quote{
			Subtotal:        decimal.RequireFromString("20"),
			ServiceFee:      decimal.RequireFromString("1.5"),
			LoyaltyDiscount: decimal.RequireFromString("8"),
			Total:           decimal.RequireFromString("13.5"),
			PointsEarned:    2,
			PointsAvailable: 40,
			ItemCount:       2,
		},
	}
}

func TestCartHandler_View(t *testing.T) {
	svc := new(MockCartService)
	svc.On("View", mock.Anything, clientID, true).Return(testCart(), nil)
	h := NewCartHandler(svc, zerolog.Nop())

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/cart?loyalty=true", nil), clientID)
	w := httptest.NewRecorder()

	h.View(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	quote := body["quote"].(map[string]interface{})
	assert.Equal(t, "13.5", quote["total"])
	assert.Equal(t, float64(2), quote["pointsEarned"])
	svc.AssertExpectations(t)
}

func TestCartHandler_AddItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockReturn     *model.CartResponse
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"itemId": 1}`,
			mockReturn:     testCart(),
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Unavailable item",
			body:           `{"itemId": 2}`,
			mockError:      model.ErrItemUnavailable,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Unknown item",
			body:           `{"itemId": 99}`,
			mockError:      model.ErrMenuItemNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           `{"itemId":`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			if tt.expectService {
				var req model.AddToCartRequest
				require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
				if tt.mockReturn != nil {
					svc.On("Add", mock.Anything, clientID, req.ItemID).Return(tt.mockReturn, nil)
				} else {
					svc.On("Add", mock.Anything, clientID, req.ItemID).Return(nil, tt.mockError)
				}
			}
			h := NewCartHandler(svc, zerolog.Nop())

			req := asUser(httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(tt.body)), clientID)
			w := httptest.NewRecorder()

			h.AddItem(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCartHandler_RemoveItem(t *testing.T) {
	tests := []struct {
		name           string
		index          string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", index: "0", expectedStatus: http.StatusOK, expectService: true},
		{name: "Out of range", index: "9", mockError: model.ErrInvalidCartIndex, expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "Not a number", index: "first", expectedStatus: http.StatusBadRequest, expectService: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			if tt.expectService {
				if tt.mockError != nil {
					svc.On("Remove", mock.Anything, clientID, mock.AnythingOfType("int")).Return(nil, tt.mockError)
				} else {
					svc.On("Remove", mock.Anything, clientID, 0).Return(&model.CartResponse{}, nil)
				}
			}
			h := NewCartHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodDelete, "/api/cart/items/"+tt.index, nil)
			req = withParam(asUser(req, clientID), "index", tt.index)
			w := httptest.NewRecorder()

			h.RemoveItem(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.expectService {
				assert.Equal(t, model.ErrCodeInvalidCartIndex, decodeError(t, w).Error)
				svc.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCartHandler_Clear(t *testing.T) {
	svc := new(MockCartService)
	svc.On("Clear", mock.Anything, clientID).Return(&model.CartResponse{Entries: []model.CartEntry{}}, nil)
	h := NewCartHandler(svc, zerolog.Nop())

	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), clientID)
	w := httptest.NewRecorder()

	h.Clear(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCartHandler_Checkout(t *testing.T) {
	receipt := &model.Receipt{Quote: testCart().Quote, PointsEarned: 2, Balance: 42}

	tests := []struct {
		name           string
		body           string
		useLoyalty     bool
		mockReturn     *model.Receipt
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success with loyalty",
			body:           `{"useLoyalty": true}`,
			useLoyalty:     true,
			mockReturn:     receipt,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Empty body pays without loyalty",
			body:           "",
			useLoyalty:     false,
			mockReturn:     receipt,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Empty cart",
			body:           `{"useLoyalty": false}`,
			mockError:      model.ErrCartEmpty,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeCartEmpty,
		},
		{
			name:           "Points update failed",
			body:           `{"useLoyalty": false}`,
			mockError:      model.NewRemoteFailure("failed to update loyalty points", nil),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   model.ErrCodeRemoteFailure,
		},
		{
			name:           "Already in progress",
			body:           `{}`,
			mockError:      model.ErrCheckoutInProgress,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeCheckoutInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			if tt.mockReturn != nil {
				svc.On("Checkout", mock.Anything, clientID, tt.useLoyalty).Return(tt.mockReturn, nil)
			} else {
				svc.On("Checkout", mock.Anything, clientID, tt.useLoyalty).Return(nil, tt.mockError)
			}
			h := NewCartHandler(svc, zerolog.Nop())

			req := asUser(httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(tt.body)), clientID)
			w := httptest.NewRecorder()

			h.Checkout(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			} else {
				var got model.Receipt
				require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
				assert.Equal(t, int64(42), got.Balance)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCartHandler_Unauthenticated(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	w := httptest.NewRecorder()

	h.Checkout(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}
