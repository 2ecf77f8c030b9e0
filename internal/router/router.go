package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/schmidtgroupe/reservation-portal/internal/api/content"
	"github.com/schmidtgroupe/reservation-portal/internal/api/products"
	"github.com/schmidtgroupe/reservation-portal/internal/api/profiles"
	"github.com/schmidtgroupe/reservation-portal/internal/api/reservations"
	"github.com/schmidtgroupe/reservation-portal/internal/api/session"
	"github.com/schmidtgroupe/reservation-portal/internal/api/storeauth"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Config contains the handlers and middleware needed to wire the router.
type Config struct {
	StoreAuthHandler    *storeauth.HandlerImpl
	SessionHandler      *session.HandlerImpl
	ProductsHandler     *products.HandlerImpl
	ReservationsHandler *reservations.HandlerImpl
	ProfilesHandler     *profiles.HandlerImpl
	ContentHandler      *content.HandlerImpl

	Authenticate func(next http.Handler) http.Handler
	RequireRole  func(roles ...string) func(next http.Handler) http.Handler

	AllowedOrigins []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (request ID, logger, recoverer) are applied
// before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Public routes: store sign-in, token refresh and the CMS blocks
		// shown on the entry page before any authentication.
		r.Group(func(r chi.Router) {
			r.Post("/auth/store", cfg.StoreAuthHandler.StoreLogin)
			r.Get("/auth/store", cfg.StoreAuthHandler.StoreLogin) // deep-link entry with query params
			r.Post("/auth/refresh", cfg.SessionHandler.Refresh)

			r.Get("/content", cfg.ContentHandler.List)
			r.Get("/content/{key}", cfg.ContentHandler.Get)
		})

		// Any signed-in store or back-office account.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Authenticate)

			r.Post("/auth/logout", cfg.SessionHandler.Logout)
			r.Post("/auth/logout-all", cfg.SessionHandler.LogoutAll)
			r.Get("/auth/me", cfg.SessionHandler.Me)

			r.Get("/products", cfg.ProductsHandler.ListCatalog)

			r.Route("/reservations", func(r chi.Router) {
				r.Get("/", cfg.ReservationsHandler.List)
				r.Get("/draft", cfg.ReservationsHandler.GetDraft)
				r.Put("/draft/items/{productID}", cfg.ReservationsHandler.SetQuantity)
				r.Post("/submit", cfg.ReservationsHandler.Submit)
				r.Get("/{reservationID}", cfg.ReservationsHandler.Get)
			})
		})

		// Back-office routes.
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.Authenticate)
			r.Use(cfg.RequireRole(types.RoleAdmin, types.RoleSuperadmin))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", cfg.ProductsHandler.ListAll)
				r.Post("/", cfg.ProductsHandler.CreateProduct)
				r.Post("/import", cfg.ProductsHandler.Import)
				r.Get("/export", cfg.ProductsHandler.Export)
				r.Get("/{productID}", cfg.ProductsHandler.GetProduct)
				r.Put("/{productID}", cfg.ProductsHandler.UpdateProduct)
				r.Delete("/{productID}", cfg.ProductsHandler.DeleteProduct)

				// Destructive catalog-wide operations stay superadmin-only.
				r.Group(func(r chi.Router) {
					r.Use(cfg.RequireRole(types.RoleSuperadmin))

					r.Post("/reset-quantities", cfg.ProductsHandler.ResetQuantities)
					r.Delete("/", cfg.ProductsHandler.DeleteAll)
				})
			})

			r.Get("/profiles", cfg.ProfilesHandler.List)
			r.Get("/profiles/{profileID}", cfg.ProfilesHandler.Get)

			r.Delete("/reservations/{reservationID}", cfg.ReservationsHandler.Delete)

			r.Post("/content", cfg.ContentHandler.Upsert)
			r.Delete("/content/{blockID}", cfg.ContentHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireRole(types.RoleSuperadmin))

				r.Get("/stores/summaries", cfg.ReservationsHandler.StoreSummaries)
				r.Put("/profiles/{profileID}", cfg.ProfilesHandler.Update)
			})
		})
	})

	return r
}
