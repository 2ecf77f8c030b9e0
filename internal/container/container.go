package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/schmidtgroupe/reservation-portal/app/db"
	"github.com/schmidtgroupe/reservation-portal/config"
	"github.com/schmidtgroupe/reservation-portal/internal/api/content"
	"github.com/schmidtgroupe/reservation-portal/internal/api/products"
	"github.com/schmidtgroupe/reservation-portal/internal/api/profiles"
	"github.com/schmidtgroupe/reservation-portal/internal/api/reservations"
	"github.com/schmidtgroupe/reservation-portal/internal/api/session"
	"github.com/schmidtgroupe/reservation-portal/internal/api/storeauth"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool

	StoreAuthHandler    *storeauth.HandlerImpl
	SessionHandler      *session.HandlerImpl
	ProductsHandler     *products.HandlerImpl
	ReservationsHandler *reservations.HandlerImpl
	ProfilesHandler     *profiles.HandlerImpl
	ContentHandler      *content.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	sessionRepo := session.NewPostgresRepository(pool, logger)
	sessionService := session.NewService(sessionRepo, cfg.JWT, cfg.StoreAuth, logger)
	sessionHandler := session.NewHandlerImpl(sessionService, logger)

	// The session service doubles as the token issuer for store sign-in.
	storeAuthRepo := storeauth.NewPostgresRepository(pool, logger)
	storeAuthService := storeauth.NewService(storeAuthRepo, sessionService, cfg.StoreAuth, logger)
	storeAuthHandler := storeauth.NewHandlerImpl(storeAuthService, logger)

	productsRepo := products.NewPostgresRepository(pool, logger)
	productsService := products.NewService(productsRepo, logger)
	productsHandler := products.NewHandlerImpl(productsService, logger)

	reservationsRepo := reservations.NewPostgresRepository(pool, logger)
	reservationsService := reservations.NewService(reservationsRepo, logger)
	reservationsHandler := reservations.NewHandlerImpl(reservationsService, logger)

	profilesRepo := profiles.NewPostgresRepository(pool, logger)
	profilesService := profiles.NewService(profilesRepo, logger)
	profilesHandler := profiles.NewHandlerImpl(profilesService, logger)

	contentRepo := content.NewPostgresRepository(pool, logger)
	contentHandler := content.NewHandlerImpl(contentRepo, logger)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Pool:                pool,
		StoreAuthHandler:    storeAuthHandler,
		SessionHandler:      sessionHandler,
		ProductsHandler:     productsHandler,
		ReservationsHandler: reservationsHandler,
		ProfilesHandler:     profilesHandler,
		ContentHandler:      contentHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
