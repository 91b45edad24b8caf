package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/campusconnect/internal/app/controllers"
	appMigrations "github.com/yigit/campusconnect/internal/app/migrations"
	appRepos "github.com/yigit/campusconnect/internal/app/repositories"
	appRoutes "github.com/yigit/campusconnect/internal/app/routes"
	appServices "github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/config"
	"github.com/yigit/campusconnect/internal/db"
	appMiddleware "github.com/yigit/campusconnect/internal/middleware"
	pkgAuth "github.com/yigit/campusconnect/internal/pkg/auth"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
	"github.com/yigit/campusconnect/internal/pkg/identity"
	"github.com/yigit/campusconnect/internal/pkg/logger"
	"github.com/yigit/campusconnect/internal/pkg/notify"
	"github.com/yigit/campusconnect/internal/pkg/validation"
	"github.com/yigit/campusconnect/internal/pkg/websocket"
	"github.com/yigit/campusconnect/internal/seed"
)

// DefaultConfigPath is read relative to the working directory
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store    docstore.Store
	Repos    *appRepos.Repositories
	Services *appServices.Services
	Channel  notify.Channel
	Hub      *websocket.Hub

	AuthController        *appControllers.AuthController
	DriveController       *appControllers.DriveController
	ApplicationController *appControllers.ApplicationController
	ApprovalController    *appControllers.ApprovalController
	DepartmentController  *appControllers.DepartmentController
	HealthController      *appControllers.HealthController
	AuthMiddleware        *appMiddleware.AuthMiddleware

	Logger zerolog.Logger
}

// Option adjusts how dependencies are built
type Option func(*buildOptions)

type buildOptions struct {
	channel  notify.Channel
	identity []identity.Option
	services appServices.Options
}

// WithChannel replaces the configured notification channel
func WithChannel(ch notify.Channel) Option {
	return func(o *buildOptions) { o.channel = ch }
}

// WithIdentityOptions passes options to the identity provider
func WithIdentityOptions(opts ...identity.Option) Option {
	return func(o *buildOptions) { o.identity = append(o.identity, opts...) }
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Str("store", cfg.Store.Backend).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured document store. The returned database is
// nil for the memory backend.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (docstore.Store, *db.PostgresDB, error) {
	if cfg.Store.Backend != config.StorePostgres {
		lgr.Info().Msg("Using in-memory document store")
		return docstore.NewMemoryStore(), nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return docstore.NewPostgresStore(database.Pool, lgr), database, nil
}

// BuildDependencies wires repositories, services, controllers and middleware
func BuildDependencies(cfg *config.Config, store docstore.Store, lgr zerolog.Logger, opts ...Option) *Dependencies {
	bo := buildOptions{
		services: appServices.Options{
			ApprovalRequired:      cfg.Approval.Required,
			CreateProfileOnSignIn: cfg.Auth.CreateProfileOnSignIn,
			NotificationFrom:      cfg.Notification.FromName,
		},
	}
	for _, opt := range opts {
		opt(&bo)
	}

	channel := bo.channel
	if channel == nil {
		channel = notify.NewChannel(notify.Config{
			Channel:  cfg.Notification.Channel,
			FromName: cfg.Notification.FromName,
			SMTP: notify.SMTPConfig{
				Host:      cfg.Notification.SMTP.Host,
				Port:      cfg.Notification.SMTP.Port,
				Username:  cfg.Notification.SMTP.Username,
				Password:  cfg.Notification.SMTP.Password,
				FromName:  cfg.Notification.FromName,
				FromEmail: cfg.Notification.SMTP.FromEmail,
				UseTLS:    cfg.Notification.SMTP.UseTLS,
			},
			SendGrid: notify.SendGridConfig{
				APIKey:    cfg.Notification.SendGrid.APIKey,
				FromName:  cfg.Notification.FromName,
				FromEmail: cfg.Notification.SendGrid.FromEmail,
			},
			SimulatedDelayMS: cfg.Notification.SimulatedDelayMS,
		}, lgr)
	}
	lgr.Info().Str("channel", channel.Name()).Msg("Notification channel ready")

	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	repos := appRepos.NewRepositories(store)
	provider := identity.NewStoreProvider(store, lgr, bo.identity...)
	svc := appServices.NewServices(repos, provider, jwtService, channel, bo.services, lgr)

	hub := websocket.NewHub(lgr)
	live := websocket.NewHandler(hub, cfg.Server.AllowedOrigins, lgr)

	return &Dependencies{
		Store:    store,
		Repos:    repos,
		Services: svc,
		Channel:  channel,
		Hub:      hub,

		AuthController:        appControllers.NewAuthController(svc.AuthService, lgr),
		DriveController:       appControllers.NewDriveController(svc.DriveService, lgr),
		ApplicationController: appControllers.NewApplicationController(svc.ApplicationService, svc.StatusWorkflow, live, lgr),
		ApprovalController:    appControllers.NewApprovalController(svc.ApprovalService, lgr),
		DepartmentController:  appControllers.NewDepartmentController(svc.DepartmentService),
		HealthController:      appControllers.NewHealthController(cfg.Store.Backend),
		AuthMiddleware:        appMiddleware.NewAuthMiddleware(svc.AuthService),

		Logger: lgr,
	}
}

// SeedDefaultData creates the demo accounts and drives when seeding is on
func SeedDefaultData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if !cfg.Seed.Enabled {
		return
	}
	if err := seed.CreateDefaultData(ctx, deps.Services, deps.Logger); err != nil {
		deps.Logger.Warn().Err(err).Msg("Default data creation finished with errors")
	}
}

// SetupRouter creates the gin engine with middleware and routes
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validation.RegisterWithGin(); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to register request validation rules")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(deps.Logger))
	router.Use(appMiddleware.CORS(cfg.Server.AllowedOrigins))

	appRoutes.SetupRouter(
		router,
		deps.AuthController,
		deps.DriveController,
		deps.ApplicationController,
		deps.ApprovalController,
		deps.DepartmentController,
		deps.HealthController,
		deps.AuthMiddleware,
		cfg.Approval.Required,
	)

	return router
}
