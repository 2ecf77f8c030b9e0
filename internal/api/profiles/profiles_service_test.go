package profiles

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, role string) ([]types.Profile, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Profile), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*types.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, params UpdateProfileParams) error {
	args := m.Called(ctx, id, params)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsUnknownRole", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, slog.Default())

		err := service.UpdateProfile(ctx, "prof-1", UpdateProfileParams{Role: strPtr("root")})
		assert.ErrorIs(t, err, types.ErrValidation)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NormalizesBrand", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, slog.Default())

		mockRepo.On("Update", mock.Anything, "prof-1", mock.MatchedBy(func(p UpdateProfileParams) bool {
			return p.Brand != nil && *p.Brand == "cuisinella"
		})).Return(nil).Once()

		err := service.UpdateProfile(ctx, "prof-1", UpdateProfileParams{Brand: strPtr("cui")})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("AcceptsKnownRoles", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, slog.Default())

		for _, role := range []string{types.RoleUser, types.RoleAdmin, types.RoleSuperadmin, types.RoleMagasin} {
			mockRepo.On("Update", mock.Anything, "prof-1", mock.AnythingOfType("profiles.UpdateProfileParams")).Return(nil).Once()
			require.NoError(t, service.UpdateProfile(ctx, "prof-1", UpdateProfileParams{Role: strPtr(role)}))
		}
		mockRepo.AssertExpectations(t)
	})
}

func TestListProfiles(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	expected := []types.Profile{{ID: "prof-1", Role: types.RoleMagasin, StoreID: "007"}}
	mockRepo.On("List", ctx, types.RoleMagasin).Return(expected, nil).Once()

	got, err := service.ListProfiles(ctx, types.RoleMagasin)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	mockRepo.AssertExpectations(t)
}
