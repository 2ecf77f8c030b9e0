package content

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schmidtgroupe/reservation-portal/internal/api"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Content blocks are plain CRUD over the repository; there is no service
// layer to speak of.
type HandlerImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandlerImpl(repo Repository, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{repo: repo, logger: logger}
}

// Get serves one block by key, brand and language. Public: the entry page
// shows CMS content before any sign-in.
func (h *HandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")
	brand := types.NormalizeBrand(r.URL.Query().Get("brand"))
	lang := r.URL.Query().Get("lang")

	block, err := h.repo.Get(ctx, key, brand, lang)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Content block not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to fetch content block", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load content")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, block)
}

func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	brand := types.NormalizeBrand(r.URL.Query().Get("brand"))

	out, err := h.repo.List(ctx, brand)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list content blocks", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load content")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}

func (h *HandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var block types.ContentBlock
	if err := api.DecodeJSONBody(w, r, &block); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if block.Key == "" || block.Brand == "" || block.LanguageCode == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "key, brand and language_code are required")
		return
	}
	block.Brand = types.NormalizeBrand(block.Brand)

	saved, err := h.repo.Upsert(ctx, block)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to upsert content block", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save content")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, saved)
}

func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "blockID")

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Content block not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to delete content block", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete content")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Content block deleted"})
}
