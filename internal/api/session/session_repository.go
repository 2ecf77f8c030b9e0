package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	GetProfileByID(ctx context.Context, accountID string) (*types.Profile, error)
	CreateDefaultProfile(ctx context.Context, accountID, storeName string) (*types.Profile, error)
	StoreRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (accountID string, expiresAt time.Time, revokedAt *time.Time, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllRefreshTokens(ctx context.Context, accountID string) error
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) GetProfileByID(ctx context.Context, accountID string) (*types.Profile, error) {
	var p types.Profile
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, store_name, role, brand, store_id, country_code, language_code, context, created_at, updated_at
         FROM profiles WHERE id = $1`,
		accountID).Scan(&p.ID, &p.StoreName, &p.Role, &p.Brand, &p.StoreID,
		&p.CountryCode, &p.LanguageCode, &p.Context, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %q: %w", accountID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: query failed: %w", err)
	}
	return &p, nil
}

// CreateDefaultProfile self-heals accounts created out-of-band: any valid
// session without a profile gets a magasin profile with a placeholder name.
func (r *PostgresRepository) CreateDefaultProfile(ctx context.Context, accountID, storeName string) (*types.Profile, error) {
	var p types.Profile
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO profiles (id, store_name, role)
         VALUES ($1, $2, $3)
         ON CONFLICT (id) DO UPDATE SET updated_at = now()
         RETURNING id, store_name, role, brand, store_id, country_code, language_code, context, created_at, updated_at`,
		accountID, storeName, types.RoleMagasin).Scan(&p.ID, &p.StoreName, &p.Role, &p.Brand, &p.StoreID,
		&p.CountryCode, &p.LanguageCode, &p.Context, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create default profile: insert failed: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) StoreRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		"INSERT INTO refresh_tokens (token, account_id, expires_at) VALUES ($1, $2, $3)",
		token, accountID, expiresAt)
	if err != nil {
		return fmt.Errorf("store refresh token: db insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetRefreshToken(ctx context.Context, token string) (string, time.Time, *time.Time, error) {
	var accountID string
	var expiresAt time.Time
	var revokedAt *time.Time
	err := r.pgpool.QueryRow(ctx,
		"SELECT account_id, expires_at, revoked_at FROM refresh_tokens WHERE token = $1",
		token).Scan(&accountID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, nil, fmt.Errorf("refresh token: %w", types.ErrNotFound)
		}
		return "", time.Time{}, nil, fmt.Errorf("get refresh token: query failed: %w", err)
	}
	return accountID, expiresAt, revokedAt, nil
}

func (r *PostgresRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	tag, err := r.pgpool.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at = $1 WHERE token = $2 AND revoked_at IS NULL",
		time.Now(), token)
	if err != nil {
		return fmt.Errorf("revoke refresh token: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("Refresh token already revoked or unknown")
	}
	return nil
}

func (r *PostgresRepository) RevokeAllRefreshTokens(ctx context.Context, accountID string) error {
	_, err := r.pgpool.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at = $1 WHERE account_id = $2 AND revoked_at IS NULL",
		time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("revoke all refresh tokens: db update failed: %w", err)
	}
	return nil
}
