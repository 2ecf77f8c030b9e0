package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/schmidtgroupe/reservation-portal/internal/api"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
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

// Refresh rotates a refresh token and returns a fresh token pair.
func (h *HandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Refresh"))

	var req RefreshRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.RefreshToken == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "refresh_token is required")
		return
	}

	access, refresh, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrSessionExpired), errors.Is(err, types.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Session expired, please sign in again")
		case errors.Is(err, types.ErrBackendUnavailable):
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry")
		default:
			l.ErrorContext(ctx, "Refresh failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to refresh session")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, TokenResponse{AccessToken: access, RefreshToken: refresh})
}

// Logout revokes the presented refresh token.
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Logout"))

	var req RefreshRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Logout(ctx, req.RefreshToken); err != nil {
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Logged out"})
}

// LogoutAll revokes every refresh token of the current account.
func (h *HandlerImpl) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "LogoutAll"))

	accountID, ok := GetAccountIDFromContext(ctx)
	if !ok || accountID == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.LogoutAll(ctx, accountID); err != nil {
		l.ErrorContext(ctx, "Logout all failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "All sessions revoked"})
}

// Me bootstraps and returns the profile for the current session. Missing
// profiles are created on the fly with the magasin role.
func (h *HandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Me"))

	accountID, ok := GetAccountIDFromContext(ctx)
	if !ok || accountID == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.service.Bootstrap(ctx, accountID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrSessionExpired):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Session expired, please sign in again")
		case errors.Is(err, types.ErrBackendUnavailable):
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry")
		default:
			l.ErrorContext(ctx, "Profile bootstrap failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}
