package products

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the business logic contract for catalog operations.
type Service interface {
	ListCatalog(ctx context.Context, brand string) ([]types.Product, error)
	ListAll(ctx context.Context, brand string) ([]types.Product, error)
	GetProduct(ctx context.Context, id string) (*types.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (*types.Product, error)
	UpdateProduct(ctx context.Context, id string, params UpdateProductParams) error
	DeleteProduct(ctx context.Context, id string) error
	Import(ctx context.Context, rows []ImportRow, replace bool) (*ImportResult, error)
	Export(ctx context.Context) ([]types.Product, error)
	ResetAllQuantities(ctx context.Context) (int64, error)
	DeleteAllProducts(ctx context.Context) (int64, error)
}

const (
	catalogCacheTTL     = 5 * time.Minute
	catalogCacheCleanup = 10 * time.Minute
)

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *gocache.Cache
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  gocache.New(catalogCacheTTL, catalogCacheCleanup),
	}
}

// ListCatalog returns the active, brand-scoped catalog shown to stores. The
// result is cached per brand and flushed on every catalog mutation.
func (s *ServiceImpl) ListCatalog(ctx context.Context, brand string) ([]types.Product, error) {
	ctx, span := otel.Tracer("ProductsService").Start(ctx, "ListCatalog", trace.WithAttributes(
		attribute.String("catalog.brand", brand),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ListCatalog"), slog.String("brand", brand))

	cacheKey := "catalog:" + brand
	if cached, found := s.cache.Get(cacheKey); found {
		l.DebugContext(ctx, "Catalog served from cache")
		span.SetStatus(codes.Ok, "cache hit")
		return cached.([]types.Product), nil
	}

	catalog, err := s.repo.List(ctx, brand, true)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list catalog", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog list failed")
		return nil, fmt.Errorf("error listing catalog: %w", err)
	}

	s.cache.Set(cacheKey, catalog, gocache.DefaultExpiration)
	l.DebugContext(ctx, "Catalog fetched", slog.Int("count", len(catalog)))
	span.SetStatus(codes.Ok, "catalog fetched")
	return catalog, nil
}

// ListAll is the admin view: every product, inactive included, optionally
// filtered by brand.
func (s *ServiceImpl) ListAll(ctx context.Context, brand string) ([]types.Product, error) {
	out, err := s.repo.List(ctx, brand, false)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return out, nil
}

func (s *ServiceImpl) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching product: %w", err)
	}
	return p, nil
}

func (s *ServiceImpl) CreateProduct(ctx context.Context, params CreateProductParams) (*types.Product, error) {
	l := s.logger.With(slog.String("method", "CreateProduct"), slog.String("reference", params.Reference))

	params.Brand = types.NormalizeBrand(params.Brand)
	p, err := s.repo.Create(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("error creating product: %w", err)
	}

	s.cache.Flush()
	l.InfoContext(ctx, "Product created", slog.String("id", p.ID))
	return p, nil
}

func (s *ServiceImpl) UpdateProduct(ctx context.Context, id string, params UpdateProductParams) error {
	if params.Brand != nil {
		normalized := types.NormalizeBrand(*params.Brand)
		params.Brand = &normalized
	}
	if err := s.repo.Update(ctx, id, params); err != nil {
		return fmt.Errorf("error updating product: %w", err)
	}
	s.cache.Flush()
	return nil
}

func (s *ServiceImpl) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting product: %w", err)
	}
	s.cache.Flush()
	return nil
}

// Import applies a bulk catalog upsert. With replace set, the existing
// catalog is wiped first (the superadmin forced re-import).
func (s *ServiceImpl) Import(ctx context.Context, rows []ImportRow, replace bool) (*ImportResult, error) {
	ctx, span := otel.Tracer("ProductsService").Start(ctx, "Import", trace.WithAttributes(
		attribute.Int("import.rows", len(rows)),
		attribute.Bool("import.replace", replace),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Import"), slog.Int("rows", len(rows)), slog.Bool("replace", replace))

	if len(rows) == 0 {
		return nil, fmt.Errorf("empty import: %w", types.ErrValidation)
	}
	for i := range rows {
		rows[i].Brand = types.NormalizeBrand(rows[i].Brand)
	}

	if replace {
		deleted, err := s.repo.DeleteAll(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "wipe before re-import failed")
			return nil, fmt.Errorf("error wiping catalog before re-import: %w", err)
		}
		l.InfoContext(ctx, "Catalog wiped before re-import", slog.Int64("deleted", deleted))
	}

	count, err := s.repo.UpsertByReference(ctx, rows)
	if err != nil {
		l.ErrorContext(ctx, "Bulk import failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk import failed")
		return nil, fmt.Errorf("error importing products: %w", err)
	}

	s.cache.Flush()
	l.InfoContext(ctx, "Catalog imported", slog.Int("imported", count))
	span.SetStatus(codes.Ok, "catalog imported")
	return &ImportResult{Imported: count, Replaced: replace}, nil
}

func (s *ServiceImpl) Export(ctx context.Context) ([]types.Product, error) {
	out, err := s.repo.List(ctx, "", false)
	if err != nil {
		return nil, fmt.Errorf("error exporting products: %w", err)
	}
	return out, nil
}

func (s *ServiceImpl) ResetAllQuantities(ctx context.Context) (int64, error) {
	l := s.logger.With(slog.String("method", "ResetAllQuantities"))

	affected, err := s.repo.ResetAllQuantities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to reset quantities", slog.Any("error", err))
		return 0, fmt.Errorf("error resetting quantities: %w", err)
	}
	s.cache.Flush()
	l.InfoContext(ctx, "All product quantities reset", slog.Int64("affected", affected))
	return affected, nil
}

func (s *ServiceImpl) DeleteAllProducts(ctx context.Context) (int64, error) {
	l := s.logger.With(slog.String("method", "DeleteAllProducts"))

	affected, err := s.repo.DeleteAll(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete all products", slog.Any("error", err))
		return 0, fmt.Errorf("error deleting all products: %w", err)
	}
	s.cache.Flush()
	l.WarnContext(ctx, "All products deleted", slog.Int64("affected", affected))
	return affected, nil
}
