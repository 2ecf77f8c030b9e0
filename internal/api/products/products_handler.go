package products

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schmidtgroupe/reservation-portal/internal/api"
	"github.com/schmidtgroupe/reservation-portal/internal/api/session"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// ListCatalog serves the store-facing catalog. Stores only ever see active
// products of their own brand; admins may pass ?brand= to preview any brand.
func (h *HandlerImpl) ListCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListCatalog"))

	role, _ := session.GetRoleFromContext(ctx)
	brand := r.URL.Query().Get("brand")
	if role == types.RoleMagasin {
		// Brand scopes what a store may see; a magasin session without one
		// must not fall through to the unfiltered catalog.
		brand, _ = session.GetBrandFromContext(ctx)
		if brand == "" {
			l.WarnContext(ctx, "Magasin session carries no brand")
			api.ErrorResponse(w, r, http.StatusForbidden, "Store session has no brand assigned")
			return
		}
	}
	brand = types.NormalizeBrand(brand)

	catalog, err := h.service.ListCatalog(ctx, brand)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list catalog", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load catalog")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, catalog)
}

// ListAll is the admin catalog view, inactive products included.
func (h *HandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListAll"))

	brand := types.NormalizeBrand(r.URL.Query().Get("brand"))
	out, err := h.service.ListAll(ctx, brand)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list products", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load products")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}

func (h *HandlerImpl) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "productID")

	p, err := h.service.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Product not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load product")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

func (h *HandlerImpl) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateProduct"))

	var params CreateProductParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if params.Name == "" || params.Reference == "" || params.Brand == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "name, reference and brand are required")
		return
	}

	p, err := h.service.CreateProduct(ctx, params)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "A product with this reference already exists")
			return
		}
		l.ErrorContext(ctx, "Failed to create product", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create product")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, p)
}

func (h *HandlerImpl) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "productID")

	var params UpdateProductParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateProduct(ctx, id, params); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Product not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Product updated"})
}

func (h *HandlerImpl) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "productID")

	if err := h.service.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Product not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Product deleted"})
}

// Import ingests a catalog CSV. ?replace=true wipes the catalog before
// importing and requires a superadmin session; plain imports stay open to
// admins.
func (h *HandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Import"))

	replace := r.URL.Query().Get("replace") == "true"
	if replace {
		role, _ := session.GetRoleFromContext(ctx)
		if role != types.RoleSuperadmin {
			l.WarnContext(ctx, "Forced re-import denied", slog.String("role", role))
			api.ErrorResponse(w, r, http.StatusForbidden, "Forced re-import requires superadmin")
			return
		}
	}

	rows, err := ParseCSV(r.Body)
	if err != nil {
		l.WarnContext(ctx, "Invalid import file", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Import(ctx, rows, replace)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Import file contains no rows")
			return
		}
		l.ErrorContext(ctx, "Import failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to import catalog")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// Export streams the whole catalog as CSV in the import format.
func (h *HandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Export"))

	catalog, err := h.service.Export(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Export failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to export catalog")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.csv"`)
	if err := WriteCSV(w, catalog); err != nil {
		l.ErrorContext(ctx, "Failed writing CSV export", slog.Any("error", err))
	}
}

// ResetQuantities zeroes the stock quantity of every product.
func (h *HandlerImpl) ResetQuantities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ResetQuantities"))

	affected, err := h.service.ResetAllQuantities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Reset quantities failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to reset quantities")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]int64{"affected": affected})
}

// DeleteAll removes every product from the catalog.
func (h *HandlerImpl) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteAll"))

	affected, err := h.service.DeleteAllProducts(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Delete all products failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete products")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]int64{"deleted": affected})
}
