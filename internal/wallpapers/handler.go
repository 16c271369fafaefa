package wallpapers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/platform/httpx"
)

// maxUploadBytes caps multipart uploads at 25 MiB.
const maxUploadBytes = 25 << 20

// Handler exposes wallpaper management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers wallpaper routes. The caller wraps them in the
// admin guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/download", h.download)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/bulk/status", h.bulkStatus)
	r.Post("/upload", h.upload)
	r.Post("/upload-url", h.uploadURL)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := listing.ParseQuery(r, "category", "status", "author")
	page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list wallpapers", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to load wallpapers")
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	wallpaper, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "wallpaper not found")
			return
		}
		h.logger.Error("get wallpaper", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, wallpaper)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.DownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "wallpaper not found")
			return
		}
		h.logger.Error("presign download", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to produce download link")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateWallpaperRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	wallpaper, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create wallpaper", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to create wallpaper")
		return
	}
	httpx.JSON(w, http.StatusCreated, wallpaper)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateWallpaperRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	wallpaper, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "wallpaper not found")
			return
		}
		h.logger.Error("update wallpaper", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to update wallpaper")
		return
	}
	httpx.JSON(w, http.StatusOK, wallpaper)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "wallpaper not found")
			return
		}
		h.logger.Error("delete wallpaper", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to delete wallpaper")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) bulkStatus(w http.ResponseWriter, r *http.Request) {
	var req BulkStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.BulkSetStatus(r.Context(), req.IDs, Status(req.Status))
	if err != nil {
		// Partial failure: the successes are committed, so report both
		// the result and the aggregate error.
		httpx.JSON(w, http.StatusMultiStatus, map[string]any{
			"result": result,
			"error":  err.Error(),
		})
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

type uploadURLRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// uploadURL reserves a direct browser upload: the dashboard PUTs the
// asset to the returned URL, then registers the wallpaper via create.
func (h *Handler) uploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "only image uploads are accepted")
		return
	}

	target, err := h.service.NewUploadTarget(r.Context(), req.Filename, req.ContentType)
	if err != nil {
		h.logger.Error("presign upload", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to produce upload link")
		return
	}
	httpx.JSON(w, http.StatusCreated, target)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid multipart body")
		return
	}

	var req UploadRequest
	if meta := r.FormValue("meta"); meta != "" {
		if err := json.Unmarshal([]byte(meta), &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid meta field")
			return
		}
	} else {
		req = UploadRequest{
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
			Category:    r.FormValue("category"),
			Author:      r.FormValue("author"),
		}
		if tags := r.FormValue("tags"); tags != "" {
			for _, tag := range strings.Split(tags, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					req.Tags = append(req.Tags, tag)
				}
			}
		}
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "image file required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "only image uploads are accepted")
		return
	}

	wallpaper, err := h.service.Upload(r.Context(), req, header.Filename, contentType, header.Size, file)
	if err != nil {
		h.logger.Error("upload wallpaper", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to store wallpaper")
		return
	}
	httpx.JSON(w, http.StatusCreated, wallpaper)
}
