package reservations

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresRepository(mockPool, slog.Default()), mockPool
}

func TestSetItemQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("ZeroQuantityDeletesLine", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectExec("DELETE FROM reservation_items").
			WithArgs("007", "prod-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		stored, err := repo.SetItemQuantity(ctx, "007", "prod-1", 0)
		require.NoError(t, err)
		assert.Equal(t, 0, stored)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("StoresClampedQuantity", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		// The product caps at 2 per store; the upsert's LEAST clamps the
		// requested 5 down and returns what was stored.
		mockPool.ExpectQuery("INSERT INTO reservation_items").
			WithArgs("007", "prod-1", 5).
			WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(2))

		stored, err := repo.SetItemQuantity(ctx, "007", "prod-1", 5)
		require.NoError(t, err)
		assert.Equal(t, 2, stored)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("UnknownOrInactiveProduct", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		// INSERT...SELECT matches no product row, so RETURNING yields nothing.
		mockPool.ExpectQuery("INSERT INTO reservation_items").
			WithArgs("007", "prod-gone", 1).
			WillReturnRows(pgxmock.NewRows([]string{"quantity"}))

		_, err := repo.SetItemQuantity(ctx, "007", "prod-gone", 1)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestSubmitDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("FreezesDraftIntoReservation", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		submittedAt := time.Date(2026, time.March, 14, 11, 0, 0, 0, time.UTC)

		mockPool.ExpectBegin()
		mockPool.ExpectQuery("SELECT i.product_id, p.name, p.reference, i.quantity").
			WithArgs("007").
			WillReturnRows(pgxmock.NewRows([]string{"product_id", "name", "reference", "quantity"}).
				AddRow("prod-1", "Spice rack", "REF-001", 2).
				AddRow("prod-2", "Bin kit", "REF-002", 1))
		mockPool.ExpectQuery("INSERT INTO reservations").
			WithArgs("007").
			WillReturnRows(pgxmock.NewRows([]string{"id", "submitted_at"}).AddRow("res-1", submittedAt))
		mockPool.ExpectExec("INSERT INTO reservation_lines").
			WithArgs("res-1", "prod-1", "Spice rack", "REF-001", 2).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectExec("INSERT INTO reservation_lines").
			WithArgs("res-1", "prod-2", "Bin kit", "REF-002", 1).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectExec("DELETE FROM reservation_items").
			WithArgs("007").
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mockPool.ExpectCommit()

		res, err := repo.SubmitDraft(ctx, "007")
		require.NoError(t, err)
		assert.Equal(t, "res-1", res.ID)
		assert.Equal(t, types.ReservationStatusSubmitted, res.Status)
		assert.Len(t, res.Lines, 2)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("EmptyDraftIsRejected", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectBegin()
		mockPool.ExpectQuery("SELECT i.product_id, p.name, p.reference, i.quantity").
			WithArgs("007").
			WillReturnRows(pgxmock.NewRows([]string{"product_id", "name", "reference", "quantity"}))
		mockPool.ExpectRollback()

		_, err := repo.SubmitDraft(ctx, "007")
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestDeleteReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectExec("DELETE FROM reservations").
			WithArgs("res-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.DeleteReservation(ctx, "res-1"))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectExec("DELETE FROM reservations").
			WithArgs("res-gone").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeleteReservation(ctx, "res-gone")
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestGetDraft(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := newMockRepo(t)
	updatedAt := time.Date(2026, time.March, 14, 11, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SELECT store_id, product_id, quantity, updated_at FROM reservation_items").
		WithArgs("007").
		WillReturnRows(pgxmock.NewRows([]string{"store_id", "product_id", "quantity", "updated_at"}).
			AddRow("007", "prod-1", 2, updatedAt))

	items, err := repo.GetDraft(ctx, "007")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
