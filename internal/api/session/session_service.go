package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/schmidtgroupe/reservation-portal/app/observability/metrics"
	"github.com/schmidtgroupe/reservation-portal/config"
	"github.com/schmidtgroupe/reservation-portal/internal/backoff"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service manages session tokens and the post-sign-in role bootstrap.
type Service interface {
	IssueTokens(ctx context.Context, profile *types.Profile) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, accountID string) error
	Bootstrap(ctx context.Context, accountID string) (*types.Profile, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	jwtCfg    config.JWTConfig
	retries   uint64
	retryBase time.Duration
}

func NewService(repo Repository, jwtCfg config.JWTConfig, authCfg config.StoreAuthConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		jwtCfg:    jwtCfg,
		retries:   uint64(authCfg.ProfileRetries),
		retryBase: time.Second,
	}
}

// IssueTokens mints an access JWT for the profile and a rotating refresh
// token persisted server-side.
func (s *ServiceImpl) IssueTokens(ctx context.Context, profile *types.Profile) (string, string, error) {
	access, err := s.generateAccessToken(profile)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh := uuid.NewString()
	expiresAt := time.Now().Add(s.jwtCfg.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, profile.ID, refresh, expiresAt); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *ServiceImpl) generateAccessToken(profile *types.Profile) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		AccountID: profile.ID,
		StoreID:   profile.StoreID,
		Role:      profile.Role,
		Brand:     profile.Brand,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}

// Refresh rotates the refresh token and returns a fresh access token.
func (s *ServiceImpl) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	l := s.logger.With(slog.String("method", "Refresh"))

	accountID, expiresAt, revokedAt, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", "", types.ErrUnauthenticated
		}
		return "", "", fmt.Errorf("%w: %w", types.ErrBackendUnavailable, err)
	}
	if time.Now().After(expiresAt) || revokedAt != nil {
		return "", "", types.ErrSessionExpired
	}

	profile, err := s.Bootstrap(ctx, accountID)
	if err != nil {
		return "", "", err
	}

	access, refresh, err := s.IssueTokens(ctx, profile)
	if err != nil {
		return "", "", err
	}

	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		l.WarnContext(ctx, "Failed to revoke rotated refresh token", slog.Any("error", err))
	}
	return access, refresh, nil
}

func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// LogoutAll revokes every refresh token of the account, ending all its
// sessions once the access tokens run out.
func (s *ServiceImpl) LogoutAll(ctx context.Context, accountID string) error {
	if err := s.repo.RevokeAllRefreshTokens(ctx, accountID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	s.logger.InfoContext(ctx, "All sessions revoked", slog.String("accountID", accountID))
	return nil
}

// Bootstrap resolves the profile backing a valid session. Transient fetch
// failures are retried up to the configured budget with linear backoff;
// session-expiry signals are surfaced immediately so the caller can force a
// sign-out. A valid session with no profile gets a default magasin profile,
// self-healing accounts created out-of-band.
func (s *ServiceImpl) Bootstrap(ctx context.Context, accountID string) (*types.Profile, error) {
	l := s.logger.With(slog.String("method", "Bootstrap"), slog.String("accountID", accountID))
	m := metrics.Get()

	var profile *types.Profile
	err := backoff.Do(ctx, s.retries, s.retryBase, func(ctx context.Context) error {
		p, ferr := s.repo.GetProfileByID(ctx, accountID)
		switch {
		case ferr == nil:
			profile = p
			return nil
		case errors.Is(ferr, types.ErrSessionExpired), errors.Is(ferr, types.ErrNotFound):
			// Not transient: expiry forces sign-out, not-found triggers the
			// self-healing path below.
			return ferr
		default:
			m.ProfileBootstrapRetries.Add(ctx, 1)
			l.WarnContext(ctx, "Transient profile fetch failure, will retry", slog.Any("error", ferr))
			return backoff.Transient(ferr)
		}
	})

	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, types.ErrSessionExpired):
		l.InfoContext(ctx, "Session expired during profile bootstrap, forcing sign-out")
		return nil, types.ErrSessionExpired
	case errors.Is(err, types.ErrNotFound):
		placeholder := "Magasin " + shortID(accountID)
		l.InfoContext(ctx, "No profile for valid session, creating default", slog.String("store_name", placeholder))
		p, cerr := s.repo.CreateDefaultProfile(ctx, accountID, placeholder)
		if cerr != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrBackendUnavailable, cerr)
		}
		return p, nil
	default:
		l.ErrorContext(ctx, "Profile bootstrap retry budget exhausted", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", types.ErrBackendUnavailable, err)
	}
}

// shortID derives the placeholder store-name suffix from an account id.
func shortID(accountID string) string {
	if len(accountID) > 8 {
		return accountID[:8]
	}
	return accountID
}
