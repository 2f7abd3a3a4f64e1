package handler

import (
	"net/http"

	"resto-collect/internal/model"
	"resto-collect/internal/service"

	"github.com/rs/zerolog"
)

// LoyaltyHandler handles loyalty balance and QR scan requests.
type LoyaltyHandler struct {
	service service.LoyaltyService
	logger  zerolog.Logger
}

// NewLoyaltyHandler creates a new loyalty handler.
func NewLoyaltyHandler(service service.LoyaltyService, logger zerolog.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		service: service,
		logger:  logger.With().Str("handler", "loyalty").Logger(),
	}
}

// Balance handles GET /api/loyalty requests.
func (h *LoyaltyHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	resp, err := h.service.Balance(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Scan handles POST /api/loyalty/scans requests.
func (h *LoyaltyHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ScanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	scan, err := h.service.Scan(r.Context(), id, req.Payload)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, scan)
}
