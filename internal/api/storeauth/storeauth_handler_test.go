package storeauth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) SignInStore(ctx context.Context, req StoreLoginRequest) (*StoreLoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StoreLoginResponse), args.Error(1)
}

func TestStoreLoginHandler(t *testing.T) {
	t.Run("DeepLinkQueryParams", func(t *testing.T) {
		mockService := new(MockService)
		handler := NewHandlerImpl(mockService, slog.Default())

		q := url.Values{}
		q.Set(ParamStoreID, "007")
		q.Set(ParamToken, "deadbeef")
		q.Set(ParamBrand, "cui")
		q.Set(ParamCountryCode, "FR")
		q.Set(ParamLanguageCode, "fr")
		req := httptest.NewRequest(http.MethodGet, "/auth/store?"+q.Encode(), nil)
		w := httptest.NewRecorder()

		expected := StoreLoginRequest{StoreID: "007", Token: "deadbeef", Brand: "cui", CountryCode: "FR", LanguageCode: "fr"}
		mockService.On("SignInStore", mock.Anything, expected).
			Return(&StoreLoginResponse{AccessToken: "access", AccountID: "acct-1", StoreID: "007", Role: types.RoleMagasin}, nil).Once()

		handler.StoreLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp StoreLoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "access", resp.AccessToken)
		assert.Equal(t, "007", resp.StoreID)
		mockService.AssertExpectations(t)
	})

	t.Run("JSONBodyFallback", func(t *testing.T) {
		mockService := new(MockService)
		handler := NewHandlerImpl(mockService, slog.Default())

		body, _ := json.Marshal(StoreLoginRequest{StoreID: "007", Token: "deadbeef", Brand: "schmidt"})
		req := httptest.NewRequest(http.MethodPost, "/auth/store", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		mockService.On("SignInStore", mock.Anything, StoreLoginRequest{StoreID: "007", Token: "deadbeef", Brand: "schmidt"}).
			Return(&StoreLoginResponse{AccessToken: "access"}, nil).Once()

		handler.StoreLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService := new(MockService)
		handler := NewHandlerImpl(mockService, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/auth/store?sg_m=07", nil)
		w := httptest.NewRecorder()

		mockService.On("SignInStore", mock.Anything, mock.AnythingOfType("storeauth.StoreLoginRequest")).
			Return(nil, types.ErrValidation).Once()

		handler.StoreLogin(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("TokenMismatchIsUnauthorized", func(t *testing.T) {
		mockService := new(MockService)
		handler := NewHandlerImpl(mockService, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/auth/store?sg_m=007&sg_p=bad", nil)
		w := httptest.NewRecorder()

		mockService.On("SignInStore", mock.Anything, mock.AnythingOfType("storeauth.StoreLoginRequest")).
			Return(nil, types.ErrTokenMismatch).Once()

		handler.StoreLogin(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("BackendDownIsServiceUnavailable", func(t *testing.T) {
		mockService := new(MockService)
		handler := NewHandlerImpl(mockService, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/auth/store?sg_m=007&sg_p=tok", nil)
		w := httptest.NewRecorder()

		mockService.On("SignInStore", mock.Anything, mock.AnythingOfType("storeauth.StoreLoginRequest")).
			Return(nil, types.ErrBackendUnavailable).Once()

		handler.StoreLogin(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		mockService.AssertExpectations(t)
	})
}
