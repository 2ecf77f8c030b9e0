package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schmidtgroupe/reservation-portal/config"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetProfileByID(ctx context.Context, accountID string) (*types.Profile, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

func (m *MockRepository) CreateDefaultProfile(ctx context.Context, accountID, storeName string) (*types.Profile, error) {
	args := m.Called(ctx, accountID, storeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

func (m *MockRepository) StoreRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, accountID, token, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) GetRefreshToken(ctx context.Context, token string) (string, time.Time, *time.Time, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Get(1).(time.Time), args.Get(2).(*time.Time), args.Error(3)
}

func (m *MockRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRepository) RevokeAllRefreshTokens(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

var testJWTCfg = config.JWTConfig{
	SecretKey:       "test-access-secret",
	AccessTokenTTL:  15 * time.Minute,
	RefreshTokenTTL: 7 * 24 * time.Hour,
	Issuer:          "test-issuer",
	Audience:        "test-audience",
}

func newTestService(repo Repository) *ServiceImpl {
	s := NewService(repo, testJWTCfg, config.StoreAuthConfig{ProfileRetries: 3}, slog.Default())
	s.retryBase = time.Millisecond
	return s
}

func TestIssueTokens(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	profile := &types.Profile{ID: "acct-1", StoreID: "007", Role: types.RoleMagasin, Brand: "schmidt"}
	mockRepo.On("StoreRefreshToken", ctx, "acct-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	access, refresh, err := service.IssueTokens(ctx, profile)
	require.NoError(t, err)
	assert.NotEmpty(t, refresh)

	// The access token must parse with our secret and carry the session claims.
	claims := &types.Claims{}
	parsed, err := jwt.ParseWithClaims(access, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testJWTCfg.SecretKey), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "acct-1", claims.AccountID)
	assert.Equal(t, "007", claims.StoreID)
	assert.Equal(t, types.RoleMagasin, claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	mockRepo.AssertExpectations(t)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("RotatesToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		profile := &types.Profile{ID: "acct-1", StoreID: "007", Role: types.RoleMagasin}
		mockRepo.On("GetRefreshToken", ctx, "old-token").
			Return("acct-1", time.Now().Add(time.Hour), (*time.Time)(nil), nil).Once()
		mockRepo.On("GetProfileByID", mock.Anything, "acct-1").Return(profile, nil).Once()
		mockRepo.On("StoreRefreshToken", ctx, "acct-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()
		mockRepo.On("RevokeRefreshToken", ctx, "old-token").Return(nil).Once()

		access, refresh, err := service.Refresh(ctx, "old-token")
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEqual(t, "old-token", refresh)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		mockRepo.On("GetRefreshToken", ctx, "old-token").
			Return("acct-1", time.Now().Add(-time.Minute), (*time.Time)(nil), nil).Once()

		_, _, err := service.Refresh(ctx, "old-token")
		assert.ErrorIs(t, err, types.ErrSessionExpired)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RevokedToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		revoked := time.Now().Add(-time.Minute)
		mockRepo.On("GetRefreshToken", ctx, "old-token").
			Return("acct-1", time.Now().Add(time.Hour), &revoked, nil).Once()

		_, _, err := service.Refresh(ctx, "old-token")
		assert.ErrorIs(t, err, types.ErrSessionExpired)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		mockRepo.On("GetRefreshToken", ctx, "bogus").
			Return("", time.Time{}, (*time.Time)(nil), types.ErrNotFound).Once()

		_, _, err := service.Refresh(ctx, "bogus")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsProfileFirstTry", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		profile := &types.Profile{ID: "acct-1", Role: types.RoleMagasin}
		mockRepo.On("GetProfileByID", mock.Anything, "acct-1").Return(profile, nil).Once()

		got, err := service.Bootstrap(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, profile, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RetriesTransientFailureThenSucceeds", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		profile := &types.Profile{ID: "acct-1", Role: types.RoleMagasin}
		mockRepo.On("GetProfileByID", mock.Anything, "acct-1").Return(nil, errors.New("dial timeout")).Once()
		mockRepo.On("GetProfileByID", mock.Anything, "acct-1").Return(profile, nil).Once()

		got, err := service.Bootstrap(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, profile, got)
		mockRepo.AssertNumberOfCalls(t, "GetProfileByID", 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ExhaustsRetryBudget", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		mockRepo.On("GetProfileByID", mock.Anything, "acct-1").Return(nil, errors.New("dial timeout")).Times(3)

		_, err := service.Bootstrap(ctx, "acct-1")
		assert.ErrorIs(t, err, types.ErrBackendUnavailable)
		mockRepo.AssertNumberOfCalls(t, "GetProfileByID", 3)
		mockRepo.AssertExpectations(t)
	})

	t.Run("SessionExpiredIsNotRetried", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		mockRepo.On("GetProfileByID", mock.Anything, "acct-1").Return(nil, types.ErrSessionExpired).Once()

		_, err := service.Bootstrap(ctx, "acct-1")
		assert.ErrorIs(t, err, types.ErrSessionExpired)
		mockRepo.AssertNumberOfCalls(t, "GetProfileByID", 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("CreatesDefaultProfileWhenMissing", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		created := &types.Profile{ID: "acct-12345678", StoreName: "Magasin acct-123", Role: types.RoleMagasin}
		mockRepo.On("GetProfileByID", mock.Anything, "acct-12345678").Return(nil, types.ErrNotFound).Once()
		mockRepo.On("CreateDefaultProfile", mock.Anything, "acct-12345678", "Magasin acct-123").Return(created, nil).Once()

		got, err := service.Bootstrap(ctx, "acct-12345678")
		require.NoError(t, err)
		assert.Equal(t, created, got)
		// Profile absence is definitive, not transient: exactly one fetch.
		mockRepo.AssertNumberOfCalls(t, "GetProfileByID", 1)
		mockRepo.AssertExpectations(t)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("RevokeRefreshToken", ctx, "tok").Return(nil).Once()
	assert.NoError(t, service.Logout(ctx, "tok"))
	mockRepo.AssertExpectations(t)
}

func TestLogoutAll(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("RevokeAllRefreshTokens", ctx, "acct-123").Return(nil).Once()
	assert.NoError(t, service.LogoutAll(ctx, "acct-123"))
	mockRepo.AssertExpectations(t)
}
