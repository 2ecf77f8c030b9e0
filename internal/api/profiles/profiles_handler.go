package profiles

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schmidtgroupe/reservation-portal/internal/api"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

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

// List returns profiles for the admin dashboard, optionally filtered by
// ?role=.
func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "List"))

	out, err := h.service.ListProfiles(ctx, r.URL.Query().Get("role"))
	if err != nil {
		l.ErrorContext(ctx, "Failed to list profiles", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load profiles")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}

func (h *HandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "profileID")

	p, err := h.service.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Profile not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// Update changes store name, role or brand on a profile (superadmin only,
// wired at the routing layer).
func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))
	id := chi.URLParam(r, "profileID")

	var params UpdateProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateProfile(ctx, id, params); err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid profile parameters")
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Profile not found")
		default:
			l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Profile updated"})
}
