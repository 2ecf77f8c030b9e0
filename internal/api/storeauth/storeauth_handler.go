package storeauth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/schmidtgroupe/reservation-portal/internal/api"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	StoreLogin(w http.ResponseWriter, r *http.Request)
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

// StoreLogin authenticates a store from a deep link. The identity arrives as
// query parameters on the link the CMS minted; a JSON body with the same
// fields is accepted as an alternative for API clients.
func (h *HandlerImpl) StoreLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "StoreLogin"))

	req := StoreLoginRequest{
		StoreID:      r.URL.Query().Get(ParamStoreID),
		Token:        r.URL.Query().Get(ParamToken),
		Brand:        r.URL.Query().Get(ParamBrand),
		CountryCode:  r.URL.Query().Get(ParamCountryCode),
		LanguageCode: r.URL.Query().Get(ParamLanguageCode),
		Context:      r.URL.Query().Get(ParamContext),
	}
	if req.StoreID == "" && req.Token == "" && r.Body != nil && r.ContentLength > 0 {
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			l.WarnContext(ctx, "Invalid store login body", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	resp, err := h.service.SignInStore(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Malformed store id or token")
		case errors.Is(err, types.ErrTokenMismatch), errors.Is(err, types.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Store authentication failed")
		case errors.Is(err, types.ErrBackendUnavailable):
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry")
		default:
			l.ErrorContext(ctx, "Store login failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Store authentication failed")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
