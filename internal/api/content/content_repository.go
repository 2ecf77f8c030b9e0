package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	Get(ctx context.Context, key, brand, languageCode string) (*types.ContentBlock, error)
	List(ctx context.Context, brand string) ([]types.ContentBlock, error)
	Upsert(ctx context.Context, block types.ContentBlock) (*types.ContentBlock, error)
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{logger: logger, pgpool: pgpool}
}

func (r *PostgresRepository) Get(ctx context.Context, key, brand, languageCode string) (*types.ContentBlock, error) {
	var b types.ContentBlock
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, key, brand, language_code, title, body, updated_at
         FROM content_blocks WHERE key = $1 AND brand = $2 AND language_code = $3`,
		key, brand, languageCode).Scan(&b.ID, &b.Key, &b.Brand, &b.LanguageCode, &b.Title, &b.Body, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("content block %q: %w", key, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get content block: query failed: %w", err)
	}
	return &b, nil
}

func (r *PostgresRepository) List(ctx context.Context, brand string) ([]types.ContentBlock, error) {
	query := "SELECT id, key, brand, language_code, title, body, updated_at FROM content_blocks"
	var args []interface{}
	if brand != "" {
		query += " WHERE brand = $1"
		args = append(args, brand)
	}
	query += " ORDER BY key, language_code"

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content blocks: query failed: %w", err)
	}
	defer rows.Close()

	var out []types.ContentBlock
	for rows.Next() {
		var b types.ContentBlock
		if err := rows.Scan(&b.ID, &b.Key, &b.Brand, &b.LanguageCode, &b.Title, &b.Body, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list content blocks: scan failed: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list content blocks: rows error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, block types.ContentBlock) (*types.ContentBlock, error) {
	var b types.ContentBlock
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO content_blocks (key, brand, language_code, title, body)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (key, brand, language_code)
         DO UPDATE SET title = EXCLUDED.title, body = EXCLUDED.body, updated_at = now()
         RETURNING id, key, brand, language_code, title, body, updated_at`,
		block.Key, block.Brand, block.LanguageCode, block.Title, block.Body).
		Scan(&b.ID, &b.Key, &b.Brand, &b.LanguageCode, &b.Title, &b.Body, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert content block: %w", err)
	}
	return &b, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM content_blocks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete content block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("content block %q: %w", id, types.ErrNotFound)
	}
	return nil
}
