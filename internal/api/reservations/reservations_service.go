package reservations

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/schmidtgroupe/reservation-portal/app/observability/metrics"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the business logic contract for draft quantities and submitted
// reservation batches.
type Service interface {
	GetDraft(ctx context.Context, storeID string) ([]types.ReservationItem, error)
	SetQuantity(ctx context.Context, storeID, productID string, quantity int) (int, error)
	Submit(ctx context.Context, storeID string) (*types.Reservation, error)
	ListByStore(ctx context.Context, storeID string) ([]types.Reservation, error)
	GetReservation(ctx context.Context, id string) (*types.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	GetStoreSummaries(ctx context.Context) ([]types.StoreSummary, error)
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

func (s *ServiceImpl) GetDraft(ctx context.Context, storeID string) ([]types.ReservationItem, error) {
	items, err := s.repo.GetDraft(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("error fetching draft: %w", err)
	}
	return items, nil
}

// SetQuantity upserts one draft line. The stored quantity may be lower than
// requested when the product has a per-store cap.
func (s *ServiceImpl) SetQuantity(ctx context.Context, storeID, productID string, quantity int) (int, error) {
	l := s.logger.With(slog.String("method", "SetQuantity"),
		slog.String("storeID", storeID), slog.String("productID", productID))

	stored, err := s.repo.SetItemQuantity(ctx, storeID, productID, quantity)
	if err != nil {
		l.ErrorContext(ctx, "Failed to set draft quantity", slog.Any("error", err))
		return 0, fmt.Errorf("error setting quantity: %w", err)
	}
	if stored != quantity && quantity > 0 {
		l.InfoContext(ctx, "Requested quantity clamped to per-store cap",
			slog.Int("requested", quantity), slog.Int("stored", stored))
	}
	return stored, nil
}

// Submit turns the current draft into an immutable reservation batch.
func (s *ServiceImpl) Submit(ctx context.Context, storeID string) (*types.Reservation, error) {
	ctx, span := otel.Tracer("ReservationsService").Start(ctx, "Submit", trace.WithAttributes(
		attribute.String("store.id", storeID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Submit"), slog.String("storeID", storeID))

	res, err := s.repo.SubmitDraft(ctx, storeID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to submit reservation", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return nil, fmt.Errorf("error submitting reservation: %w", err)
	}

	metrics.Get().ReservationsSubmitted.Add(ctx, 1)
	l.InfoContext(ctx, "Reservation submitted",
		slog.String("reservationID", res.ID),
		slog.Int("lines", len(res.Lines)),
	)
	span.SetStatus(codes.Ok, "reservation submitted")
	return res, nil
}

func (s *ServiceImpl) ListByStore(ctx context.Context, storeID string) ([]types.Reservation, error) {
	out, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("error listing reservations: %w", err)
	}
	return out, nil
}

func (s *ServiceImpl) GetReservation(ctx context.Context, id string) (*types.Reservation, error) {
	res, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching reservation: %w", err)
	}
	return res, nil
}

func (s *ServiceImpl) DeleteReservation(ctx context.Context, id string) error {
	l := s.logger.With(slog.String("method", "DeleteReservation"), slog.String("reservationID", id))

	if err := s.repo.DeleteReservation(ctx, id); err != nil {
		l.ErrorContext(ctx, "Failed to delete reservation", slog.Any("error", err))
		return fmt.Errorf("error deleting reservation: %w", err)
	}
	l.InfoContext(ctx, "Reservation deleted")
	return nil
}

func (s *ServiceImpl) GetStoreSummaries(ctx context.Context) ([]types.StoreSummary, error) {
	out, err := s.repo.GetStoreSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching store summaries: %w", err)
	}
	return out, nil
}
