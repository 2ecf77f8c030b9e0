package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

func signTestToken(t *testing.T, secret string, mutate func(*types.Claims)) string {
	t.Helper()
	now := time.Now()
	claims := &types.Claims{
		AccountID: "acct-1",
		StoreID:   "007",
		Role:      types.RoleMagasin,
		Brand:     "schmidt",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-1",
			Issuer:    testJWTCfg.Issuer,
			Audience:  jwt.ClaimStrings{testJWTCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
	}
	if mutate != nil {
		mutate(claims)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthenticate(t *testing.T) {
	mw := Authenticate(slog.Default(), testJWTCfg)

	var gotCtx context.Context
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtx = r.Context()
		w.WriteHeader(http.StatusOK)
	})

	run := func(authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, req)
		return w
	}

	t.Run("ValidTokenInjectsSessionContext", func(t *testing.T) {
		w := run("Bearer " + signTestToken(t, testJWTCfg.SecretKey, nil))
		require.Equal(t, http.StatusOK, w.Code)

		accountID, ok := GetAccountIDFromContext(gotCtx)
		require.True(t, ok)
		assert.Equal(t, "acct-1", accountID)
		storeID, _ := GetStoreIDFromContext(gotCtx)
		assert.Equal(t, "007", storeID)
		role, _ := GetRoleFromContext(gotCtx)
		assert.Equal(t, types.RoleMagasin, role)
		brand, _ := GetBrandFromContext(gotCtx)
		assert.Equal(t, "schmidt", brand)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, run("").Code)
	})

	t.Run("NotBearer", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, run("Basic abc123").Code)
	})

	t.Run("WrongSignature", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, run("Bearer "+signTestToken(t, "other-secret", nil)).Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		expired := signTestToken(t, testJWTCfg.SecretKey, func(c *types.Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		})
		w := run("Bearer " + expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := signTestToken(t, testJWTCfg.SecretKey, func(c *types.Claims) {
			c.Issuer = "someone-else"
		})
		assert.Equal(t, http.StatusUnauthorized, run("Bearer "+other).Code)
	})
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(slog.Default(), types.RoleAdmin, types.RoleSuperadmin)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	run := func(role string, withRole bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
		if withRole {
			req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, role))
		}
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, run(types.RoleAdmin, true).Code)
	assert.Equal(t, http.StatusOK, run(types.RoleSuperadmin, true).Code)
	assert.Equal(t, http.StatusForbidden, run(types.RoleMagasin, true).Code)
	assert.Equal(t, http.StatusUnauthorized, run("", false).Code)
}
