package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"resto-collect/internal/model"
	"resto-collect/internal/service"

	"github.com/rs/zerolog"
)

const (
	// maxImageBytes caps a single uploaded picture.
	maxImageBytes = 8 << 20
	// maxUploadBytes caps a whole announcement form.
	maxUploadBytes = model.MaxAnnouncementImages*maxImageBytes + 1<<20
)

// AnnouncementHandler handles announcement requests.
type AnnouncementHandler struct {
	service service.AnnouncementService
	logger  zerolog.Logger
}

// NewAnnouncementHandler creates a new announcement handler.
func NewAnnouncementHandler(service service.AnnouncementService, logger zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		logger:  logger.With().Str("handler", "announcement").Logger(),
	}
}

// List handles GET /api/announcements requests.
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Publish handles multipart POST /api/announcements requests carrying
// title, content and up to four images fields.
func (h *AnnouncementHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, model.NewDomainError(model.ErrCodeInvalidJSON, "invalid multipart form"), h.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) > model.MaxAnnouncementImages {
		writeError(w, r, model.ErrTooManyImages, h.logger)
		return
	}

	req := &model.PublishAnnouncementRequest{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}
	for _, fh := range files {
		img, err := readImage(fh)
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		req.Images = append(req.Images, img)
	}

	a, err := h.service.Publish(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// ToggleLike handles POST /api/announcements/{id}/like requests.
func (h *AnnouncementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	announcementID, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	liked, err := h.service.ToggleLike(r.Context(), id, announcementID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.LikeResponse{Liked: liked})
}

// readImage loads one uploaded part. The declared content type is trusted
// when present, otherwise it is sniffed.
func readImage(fh *multipart.FileHeader) (model.AnnouncementImage, error) {
	if fh.Size > maxImageBytes {
		return model.AnnouncementImage{}, model.NewDomainError(model.ErrCodeInvalidJSON, "image is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return model.AnnouncementImage{}, model.NewDomainError(model.ErrCodeInvalidJSON, "unreadable image")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil || len(data) > maxImageBytes {
		return model.AnnouncementImage{}, model.NewDomainError(model.ErrCodeInvalidJSON, "unreadable image")
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return model.AnnouncementImage{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
