package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clipship/backend/internal/analytics"
	"github.com/clipship/backend/internal/config"
	"github.com/clipship/backend/internal/db"
	"github.com/clipship/backend/internal/metrics"
	"github.com/clipship/backend/internal/repository"
	"github.com/clipship/backend/internal/service"
	"github.com/clipship/backend/internal/storage"
)

type App struct {
	Cfg                *config.Config
	DB                 *sqlx.DB
	ProfileRepository  repository.UserProfileRepository
	VideoRepository    repository.VideoRepository
	SessionService     *service.SessionService
	EntitlementService *service.EntitlementService
	VideoService       *service.VideoService
	Metrics            *metrics.Collector
	MetricsRegistry    *prometheus.Registry
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	if cfg.IsDevelopment() && cfg.SeedDev {
		err = db.SeedDev(database)
		if err != nil {
			return nil, fmt.Errorf("failed to seed database: %v", err)
		}
	}

	// Repositories
	profileRepository := repository.NewUserProfileRepository(database)
	videoRepository := repository.NewVideoRepository(database)

	// Signed URL issuer
	signer, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Observability
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Telemetry sink (no-op when unconfigured)
	events := analytics.New(cfg.AnalyticsEndpoint, cfg.AnalyticsAPIKey)

	// Services
	sessionService := service.NewSessionService(
		profileRepository,
		cfg.IdentityJWTSecret,
		cfg.SessionCookie,
		cfg.IsProduction(),
	)
	entitlementService := service.NewEntitlementService(cfg.BillingConfigured())
	videoService := service.NewVideoService(
		videoRepository,
		signer,
		entitlementService,
		events,
		collector,
	)

	return &App{
		Cfg:                cfg,
		DB:                 database,
		ProfileRepository:  profileRepository,
		VideoRepository:    videoRepository,
		SessionService:     sessionService,
		EntitlementService: entitlementService,
		VideoService:       videoService,
		Metrics:            collector,
		MetricsRegistry:    registry,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
