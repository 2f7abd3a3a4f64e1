package handler

import (
	"net/http"

	"resto-collect/internal/model"
	"resto-collect/internal/service"

	"github.com/rs/zerolog"
)

// MenuHandler handles menu-related HTTP requests.
type MenuHandler struct {
	service service.MenuService
	logger  zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(service service.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger.With().Str("handler", "menu").Logger(),
	}
}

// List handles GET /api/menu requests. With grouped=true the dishes are
// returned as category sections.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	if boolQuery(r, "grouped") {
		sections, err := h.service.Sections(r.Context())
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, sections)
		return
	}

	items, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// SetAvailability handles PATCH /api/menu/{id}/availability requests.
func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	itemID, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.AvailabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Available == nil {
		writeError(w, r, model.NewMissingField("available is required"), h.logger)
		return
	}

	item, err := h.service.SetAvailability(r.Context(), id, itemID, *req.Available)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item)
}
