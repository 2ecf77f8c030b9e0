package reservations

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schmidtgroupe/reservation-portal/internal/api"
	"github.com/schmidtgroupe/reservation-portal/internal/api/session"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SetQuantityResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// storeID resolves the acting store from the session claims.
func storeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := session.GetStoreIDFromContext(r.Context())
	if !ok || id == "" {
		api.ErrorResponse(w, r, http.StatusForbidden, "A store session is required")
		return "", false
	}
	return id, true
}

// GetDraft returns the store's current draft quantities.
func (h *HandlerImpl) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := storeID(w, r)
	if !ok {
		return
	}

	items, err := h.service.GetDraft(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch draft", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load draft")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, items)
}

// SetQuantity upserts a draft line; quantity zero removes it.
func (h *HandlerImpl) SetQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := storeID(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")

	var req SetQuantityRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity < 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	stored, err := h.service.SetQuantity(ctx, id, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Product not found or inactive")
		} else {
			h.logger.ErrorContext(ctx, "Failed to set quantity", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to set quantity")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, SetQuantityResponse{ProductID: productID, Quantity: stored})
}

// Submit turns the draft into a reservation batch.
func (h *HandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := storeID(w, r)
	if !ok {
		return
	}

	res, err := h.service.Submit(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Draft is empty, nothing to submit")
		} else {
			h.logger.ErrorContext(ctx, "Failed to submit reservation", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to submit reservation")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, res)
}

// List returns the store's own submitted reservations.
func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := storeID(w, r)
	if !ok {
		return
	}

	out, err := h.service.ListByStore(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list reservations", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load reservations")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}

// Get returns one reservation with its lines. Stores may only read their own;
// admins may read any.
func (h *HandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reservationID := chi.URLParam(r, "reservationID")

	res, err := h.service.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Reservation not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to fetch reservation", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load reservation")
		}
		return
	}

	role, _ := session.GetRoleFromContext(ctx)
	if role == types.RoleMagasin {
		own, _ := session.GetStoreIDFromContext(ctx)
		if res.StoreID != own {
			api.ErrorResponse(w, r, http.StatusForbidden, "Not your reservation")
			return
		}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, res)
}

// Delete removes a reservation (admin only, wired at the routing layer).
func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reservationID := chi.URLParam(r, "reservationID")

	if err := h.service.DeleteReservation(ctx, reservationID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Reservation not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to delete reservation", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete reservation")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Reservation deleted"})
}

// StoreSummaries is the superadmin cross-store overview.
func (h *HandlerImpl) StoreSummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out, err := h.service.GetStoreSummaries(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch store summaries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load store summaries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}
