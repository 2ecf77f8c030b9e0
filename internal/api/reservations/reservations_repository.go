package reservations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	GetDraft(ctx context.Context, storeID string) ([]types.ReservationItem, error)
	SetItemQuantity(ctx context.Context, storeID, productID string, quantity int) (int, error)
	SubmitDraft(ctx context.Context, storeID string) (*types.Reservation, error)
	ListByStore(ctx context.Context, storeID string) ([]types.Reservation, error)
	GetReservation(ctx context.Context, id string) (*types.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	GetStoreSummaries(ctx context.Context) ([]types.StoreSummary, error)
}

// DB is the slice of the pgx pool this repository needs. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool DB
}

func NewPostgresRepository(pgpool DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) GetDraft(ctx context.Context, storeID string) ([]types.ReservationItem, error) {
	rows, err := r.pgpool.Query(ctx,
		"SELECT store_id, product_id, quantity, updated_at FROM reservation_items WHERE store_id = $1 ORDER BY updated_at",
		storeID)
	if err != nil {
		return nil, fmt.Errorf("get draft: query failed: %w", err)
	}
	defer rows.Close()

	var items []types.ReservationItem
	for rows.Next() {
		var it types.ReservationItem
		if err := rows.Scan(&it.StoreID, &it.ProductID, &it.Quantity, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("get draft: scan failed: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get draft: rows error: %w", err)
	}
	return items, nil
}

// SetItemQuantity upserts a draft line, clamping to the product's
// max_per_store when one is set. Quantity zero removes the line. Returns the
// clamped quantity actually stored.
func (r *PostgresRepository) SetItemQuantity(ctx context.Context, storeID, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		_, err := r.pgpool.Exec(ctx,
			"DELETE FROM reservation_items WHERE store_id = $1 AND product_id = $2",
			storeID, productID)
		if err != nil {
			return 0, fmt.Errorf("set item quantity: delete failed: %w", err)
		}
		return 0, nil
	}

	var stored int
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO reservation_items (store_id, product_id, quantity)
         SELECT $1, p.id, LEAST($3::int, CASE WHEN p.max_per_store > 0 THEN p.max_per_store ELSE $3::int END)
         FROM products p WHERE p.id = $2 AND p.active
         ON CONFLICT (store_id, product_id)
         DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
         RETURNING quantity`,
		storeID, productID, quantity).Scan(&stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("product %q: %w", productID, types.ErrNotFound)
		}
		return 0, fmt.Errorf("set item quantity: upsert failed: %w", err)
	}
	return stored, nil
}

// SubmitDraft freezes the current draft into an immutable reservation and
// clears the draft, all in one transaction.
func (r *PostgresRepository) SubmitDraft(ctx context.Context, storeID string) (*types.Reservation, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit draft: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx,
		`SELECT i.product_id, p.name, p.reference, i.quantity
         FROM reservation_items i
         JOIN products p ON p.id = i.product_id
         WHERE i.store_id = $1`,
		storeID)
	if err != nil {
		return nil, fmt.Errorf("submit draft: draft query failed: %w", err)
	}

	var lines []types.ReservationLine
	for rows.Next() {
		var line types.ReservationLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Reference, &line.Quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("submit draft: scan failed: %w", err)
		}
		lines = append(lines, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("submit draft: rows error: %w", err)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("draft for store %q is empty: %w", storeID, types.ErrValidation)
	}

	var res types.Reservation
	res.StoreID = storeID
	res.Status = types.ReservationStatusSubmitted
	err = tx.QueryRow(ctx,
		"INSERT INTO reservations (store_id) VALUES ($1) RETURNING id, submitted_at",
		storeID).Scan(&res.ID, &res.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("submit draft: insert reservation failed: %w", err)
	}

	for _, line := range lines {
		_, err = tx.Exec(ctx,
			"INSERT INTO reservation_lines (reservation_id, product_id, product_name, reference, quantity) VALUES ($1, $2, $3, $4, $5)",
			res.ID, line.ProductID, line.ProductName, line.Reference, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("submit draft: insert line failed: %w", err)
		}
	}

	_, err = tx.Exec(ctx, "DELETE FROM reservation_items WHERE store_id = $1", storeID)
	if err != nil {
		return nil, fmt.Errorf("submit draft: clear draft failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("submit draft: commit failed: %w", err)
	}

	res.Lines = lines
	return &res, nil
}

func (r *PostgresRepository) ListByStore(ctx context.Context, storeID string) ([]types.Reservation, error) {
	rows, err := r.pgpool.Query(ctx,
		"SELECT id, store_id, status, submitted_at FROM reservations WHERE store_id = $1 ORDER BY submitted_at DESC",
		storeID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: query failed: %w", err)
	}
	defer rows.Close()

	var out []types.Reservation
	for rows.Next() {
		var res types.Reservation
		if err := rows.Scan(&res.ID, &res.StoreID, &res.Status, &res.SubmittedAt); err != nil {
			return nil, fmt.Errorf("list reservations: scan failed: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservations: rows error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetReservation(ctx context.Context, id string) (*types.Reservation, error) {
	var res types.Reservation
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, store_id, status, submitted_at FROM reservations WHERE id = $1",
		id).Scan(&res.ID, &res.StoreID, &res.Status, &res.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reservation %q: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get reservation: query failed: %w", err)
	}

	rows, err := r.pgpool.Query(ctx,
		"SELECT product_id, product_name, reference, quantity FROM reservation_lines WHERE reservation_id = $1",
		id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: lines query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line types.ReservationLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Reference, &line.Quantity); err != nil {
			return nil, fmt.Errorf("get reservation: scan failed: %w", err)
		}
		res.Lines = append(res.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get reservation: rows error: %w", err)
	}
	return &res, nil
}

func (r *PostgresRepository) DeleteReservation(ctx context.Context, id string) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM reservations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete reservation: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reservation %q: %w", id, types.ErrNotFound)
	}
	return nil
}

// GetStoreSummaries aggregates submitted reservations per store for the
// cross-store overview.
func (r *PostgresRepository) GetStoreSummaries(ctx context.Context) ([]types.StoreSummary, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT pr.store_id, pr.store_name, pr.brand,
                COUNT(DISTINCT res.id),
                COALESCE(SUM(l.quantity), 0),
                MAX(res.submitted_at)
         FROM profiles pr
         LEFT JOIN reservations res ON res.store_id = pr.store_id AND res.status = 'submitted'
         LEFT JOIN reservation_lines l ON l.reservation_id = res.id
         WHERE pr.role = $1 AND pr.store_id <> ''
         GROUP BY pr.store_id, pr.store_name, pr.brand
         ORDER BY pr.store_id`,
		types.RoleMagasin)
	if err != nil {
		return nil, fmt.Errorf("store summaries: query failed: %w", err)
	}
	defer rows.Close()

	var out []types.StoreSummary
	for rows.Next() {
		var s types.StoreSummary
		if err := rows.Scan(&s.StoreID, &s.StoreName, &s.Brand, &s.ReservationCount, &s.TotalUnits, &s.LastSubmittedAt); err != nil {
			return nil, fmt.Errorf("store summaries: scan failed: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store summaries: rows error: %w", err)
	}
	return out, nil
}
