package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	List(ctx context.Context, role string) ([]types.Profile, error)
	GetByID(ctx context.Context, id string) (*types.Profile, error)
	Update(ctx context.Context, id string, params UpdateProfileParams) error
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

const profileColumns = "id, store_name, role, brand, store_id, country_code, language_code, context, created_at, updated_at"

func scanProfile(row pgx.Row) (*types.Profile, error) {
	var p types.Profile
	err := row.Scan(&p.ID, &p.StoreName, &p.Role, &p.Brand, &p.StoreID,
		&p.CountryCode, &p.LanguageCode, &p.Context, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) List(ctx context.Context, role string) ([]types.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles"
	var args []interface{}
	if role != "" {
		query += " WHERE role = $1"
		args = append(args, role)
	}
	query += " ORDER BY store_id, store_name"

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: query failed: %w", err)
	}
	defer rows.Close()

	var out []types.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("list profiles: scan failed: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: rows error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*types.Profile, error) {
	p, err := scanProfile(r.pgpool.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %q: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: query failed: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, params UpdateProfileParams) error {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if params.StoreName != nil {
		add("store_name", *params.StoreName)
	}
	if params.Role != nil {
		add("role", *params.Role)
	}
	if params.Brand != nil {
		add("brand", *params.Brand)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %q: %w", id, types.ErrNotFound)
	}
	return nil
}
