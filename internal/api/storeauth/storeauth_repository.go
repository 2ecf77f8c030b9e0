package storeauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Repository = (*PostgresRepository)(nil)

// Repository is the persistence contract for the store auth flow. Not-found
// results surface types.ErrNotFound; unique-violation on account creation
// surfaces types.ErrProvisioningConflict.
type Repository interface {
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	CreateStoreAccount(ctx context.Context, email, passwordHash string, identity types.StoreIdentity) (string, error)
	GetProfileByStoreID(ctx context.Context, storeID string) (*types.Profile, error)
	UpdatePasswordHash(ctx context.Context, accountID, newHash string) error
	SyncProfileMetadata(ctx context.Context, accountID string, md types.ProfileMetadata) error
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

const uniqueViolation = "23505"

func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1",
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %q: %w", email, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get account: query failed: %w", err)
	}
	return &a, nil
}

// CreateStoreAccount inserts the account and its profile in one transaction.
// The profile role is fixed to magasin; callers never choose it.
func (r *PostgresRepository) CreateStoreAccount(ctx context.Context, email, passwordHash string, identity types.StoreIdentity) (string, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("create store account: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var accountID string
	err = tx.QueryRow(ctx,
		"INSERT INTO accounts (email, password_hash) VALUES ($1, $2) RETURNING id",
		email, passwordHash).Scan(&accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("account %q: %w", email, types.ErrProvisioningConflict)
		}
		return "", fmt.Errorf("create store account: insert account failed: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, store_name, role, brand, store_id, country_code, language_code, context)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		accountID, "Magasin "+identity.StoreID, types.RoleMagasin,
		identity.Brand, identity.StoreID, identity.CountryCode, identity.LanguageCode, identity.Context)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("profile for store %q: %w", identity.StoreID, types.ErrProvisioningConflict)
		}
		return "", fmt.Errorf("create store account: insert profile failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("create store account: commit failed: %w", err)
	}
	return accountID, nil
}

func (r *PostgresRepository) GetProfileByStoreID(ctx context.Context, storeID string) (*types.Profile, error) {
	var p types.Profile
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, store_name, role, brand, store_id, country_code, language_code, context, created_at, updated_at
         FROM profiles WHERE store_id = $1`,
		storeID).Scan(&p.ID, &p.StoreName, &p.Role, &p.Brand, &p.StoreID,
		&p.CountryCode, &p.LanguageCode, &p.Context, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile for store %q: %w", storeID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile by store id: query failed: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, accountID, newHash string) error {
	tag, err := r.pgpool.Exec(ctx,
		"UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3",
		newHash, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("update password hash: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %q: %w", accountID, types.ErrNotFound)
	}
	return nil
}

// SyncProfileMetadata refreshes the locale/brand fields so the latest deep
// link wins over stale stored values.
func (r *PostgresRepository) SyncProfileMetadata(ctx context.Context, accountID string, md types.ProfileMetadata) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE profiles SET brand = $1, country_code = $2, language_code = $3, context = $4, updated_at = $5
         WHERE id = $6`,
		md.Brand, md.CountryCode, md.LanguageCode, md.Context, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("sync profile metadata: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %q: %w", accountID, types.ErrNotFound)
	}
	return nil
}
