package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	List(ctx context.Context, brand string, activeOnly bool) ([]types.Product, error)
	GetByID(ctx context.Context, id string) (*types.Product, error)
	Create(ctx context.Context, params CreateProductParams) (*types.Product, error)
	Update(ctx context.Context, id string, params UpdateProductParams) error
	Delete(ctx context.Context, id string) error
	UpsertByReference(ctx context.Context, rows []ImportRow) (int, error)
	ResetAllQuantities(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
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

const productColumns = "id, name, reference, description, category, brand, image_url, stock_quantity, max_per_store, active, created_at, updated_at"

func scanProduct(row pgx.Row) (*types.Product, error) {
	var p types.Product
	err := row.Scan(&p.ID, &p.Name, &p.Reference, &p.Description, &p.Category, &p.Brand,
		&p.ImageURL, &p.StockQuantity, &p.MaxPerStore, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns catalog entries, optionally filtered by brand and restricted
// to active products (the store-facing view).
func (r *PostgresRepository) List(ctx context.Context, brand string, activeOnly bool) ([]types.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	var conds []string
	var args []interface{}
	if brand != "" {
		args = append(args, brand)
		conds = append(conds, fmt.Sprintf("brand = $%d", len(args)))
	}
	if activeOnly {
		conds = append(conds, "active")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY category, name"

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: query failed: %w", err)
	}
	defer rows.Close()

	var out []types.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("list products: scan failed: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: rows error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*types.Product, error) {
	p, err := scanProduct(r.pgpool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %q: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: query failed: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, params CreateProductParams) (*types.Product, error) {
	active := true
	if params.Active != nil {
		active = *params.Active
	}
	p, err := scanProduct(r.pgpool.QueryRow(ctx,
		`INSERT INTO products (name, reference, description, category, brand, image_url, stock_quantity, max_per_store, active)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING `+productColumns,
		params.Name, params.Reference, params.Description, params.Category,
		params.Brand, params.ImageURL, params.StockQuantity, params.MaxPerStore, active))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("reference %q: %w", params.Reference, types.ErrConflict)
		}
		return nil, fmt.Errorf("create product: insert failed: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, params UpdateProductParams) error {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.Brand != nil {
		add("brand", *params.Brand)
	}
	if params.ImageURL != nil {
		add("image_url", *params.ImageURL)
	}
	if params.StockQuantity != nil {
		add("stock_quantity", *params.StockQuantity)
	}
	if params.MaxPerStore != nil {
		add("max_per_store", *params.MaxPerStore)
	}
	if params.Active != nil {
		add("active", *params.Active)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %q: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %q: %w", id, types.ErrNotFound)
	}
	return nil
}

// UpsertByReference applies a bulk import in one transaction, keyed on the
// reference column.
func (r *PostgresRepository) UpsertByReference(ctx context.Context, rows []ImportRow) (int, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("import products: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	count := 0
	for _, row := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO products (name, reference, description, category, brand, image_url, stock_quantity, max_per_store, active)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
             ON CONFLICT (reference) DO UPDATE SET
                 name = EXCLUDED.name,
                 description = EXCLUDED.description,
                 category = EXCLUDED.category,
                 brand = EXCLUDED.brand,
                 image_url = EXCLUDED.image_url,
                 stock_quantity = EXCLUDED.stock_quantity,
                 max_per_store = EXCLUDED.max_per_store,
                 active = EXCLUDED.active,
                 updated_at = now()`,
			row.Name, row.Reference, row.Description, row.Category, row.Brand,
			row.ImageURL, row.StockQuantity, row.MaxPerStore, row.Active)
		if err != nil {
			return 0, fmt.Errorf("import products: upsert %q failed: %w", row.Reference, err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("import products: commit failed: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ResetAllQuantities(ctx context.Context) (int64, error) {
	tag, err := r.pgpool.Exec(ctx, "UPDATE products SET stock_quantity = 0, updated_at = now() WHERE stock_quantity <> 0")
	if err != nil {
		return 0, fmt.Errorf("reset all quantities: db update failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM products")
	if err != nil {
		return 0, fmt.Errorf("delete all products: db delete failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
