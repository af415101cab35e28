package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/services"

	"go.uber.org/zap"
)

// MediaHandler - обработчик запросов к медиафайлам и справочникам.
type MediaHandler struct {
	Service *services.MediaService
	Catalog *services.CatalogService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewMediaHandler создает новый экземпляр MediaHandler.
func NewMediaHandler(service *services.MediaService, catalog *services.CatalogService, logger *zap.Logger, timeout time.Duration) *MediaHandler {
	return &MediaHandler{
		Service: service,
		Catalog: catalog,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateMedia обрабатывает запросы для создания медиаконтейнера.
func (h *MediaHandler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	media, err := h.Service.CreateMedia(ctx, actor)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to create media")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, media)
}

// GetMedia обрабатывает запросы для получения активных файлов контейнера.
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	content, err := h.Service.GetMediaContent(ctx, r.PathValue("mediaId"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch media")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, content)
}

// AddMediaFile возвращает обработчик регистрации файла указанного типа.
func (h *MediaHandler) AddMediaFile(kind models.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentActor(w, r, h.Logger)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
		defer cancel()

		var fileReq models.MediaFileRequest
		if !decodeBody(w, r, h.Logger, &fileReq) {
			return
		}

		file, err := h.Service.AddMediaFile(ctx, actor, kind, r.PathValue("mediaId"), fileReq)
		if err != nil {
			sendServiceError(w, h.Logger, err, "failed to add "+string(kind))
			return
		}
		sendJSON(w, h.Logger, http.StatusOK, file)
	}
}

// DeactivateMediaFile возвращает обработчик скрытия файла указанного типа.
func (h *MediaHandler) DeactivateMediaFile(kind models.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentActor(w, r, h.Logger)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
		defer cancel()

		if err := h.Service.DeactivateMediaFile(ctx, actor, kind, r.PathValue("fileId")); err != nil {
			sendServiceError(w, h.Logger, err, "failed to deactivate "+string(kind))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetTaxonomy возвращает обработчик чтения справочника.
func (h *MediaHandler) GetTaxonomy(taxonomy repository.Taxonomy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
		defer cancel()

		items, err := h.Catalog.GetTaxonomy(ctx, taxonomy)
		if err != nil {
			sendServiceError(w, h.Logger, err, "failed to fetch "+string(taxonomy))
			return
		}
		sendJSON(w, h.Logger, http.StatusOK, items)
	}
}
