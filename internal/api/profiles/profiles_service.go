package profiles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// UpdateProfileParams carries the fields a superadmin may change on a store
// profile; nil fields are left untouched.
type UpdateProfileParams struct {
	StoreName *string `json:"store_name,omitempty"`
	Role      *string `json:"role,omitempty"`
	Brand     *string `json:"brand,omitempty"`
}

type Service interface {
	ListProfiles(ctx context.Context, role string) ([]types.Profile, error)
	GetProfile(ctx context.Context, id string) (*types.Profile, error)
	UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) ListProfiles(ctx context.Context, role string) ([]types.Profile, error) {
	out, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}
	return out, nil
}

func (s *ServiceImpl) GetProfile(ctx context.Context, id string) (*types.Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}
	return p, nil
}

func (s *ServiceImpl) UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) error {
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("profileID", id))

	if params.Role != nil {
		switch *params.Role {
		case types.RoleUser, types.RoleAdmin, types.RoleSuperadmin, types.RoleMagasin:
		default:
			return fmt.Errorf("unknown role %q: %w", *params.Role, types.ErrValidation)
		}
	}
	if params.Brand != nil {
		normalized := types.NormalizeBrand(*params.Brand)
		params.Brand = &normalized
	}

	if err := s.repo.Update(ctx, id, params); err != nil {
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		return fmt.Errorf("error updating profile: %w", err)
	}
	l.InfoContext(ctx, "Profile updated")
	return nil
}
