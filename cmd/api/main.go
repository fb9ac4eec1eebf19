package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/energycommunities/backend/docs"
	"github.com/energycommunities/backend/internal/auth/middleware"
	"github.com/energycommunities/backend/internal/auth/service"
	"github.com/energycommunities/backend/internal/config"
	"github.com/energycommunities/backend/internal/handlers"
	"github.com/energycommunities/backend/internal/logger"
	loggerMiddleware "github.com/energycommunities/backend/internal/logger/middleware"
	"github.com/energycommunities/backend/internal/metrics"
	sharedMiddleware "github.com/energycommunities/backend/internal/middleware"
	"github.com/energycommunities/backend/internal/models"
	"github.com/energycommunities/backend/internal/notifications"
	"github.com/energycommunities/backend/internal/repositories"
	"github.com/energycommunities/backend/internal/services"
	"github.com/energycommunities/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Energy Communities API
// @version 1.0
// @description API for energy community applications, news and carousel content

// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Energy Communities API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	healthChecks := map[string]handlers.HealthCheck{
		"database": db.PingContext,
	}

	// Decision notifications go through Redis when enabled
	var notifier services.Notifier = notifications.NewNopNotifier()
	if cfg.Notifications.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		healthChecks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}

		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		notifier = notifications.NewQueueNotifier(client, logger.Logger)
	}

	// Initialize JWT token service
	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	communityRepo := repositories.NewCommunityRepository(db, logger.Logger)
	newsRepo := repositories.NewNewsRepository(db, logger.Logger)
	carouselRepo := repositories.NewCarouselRepository(db, logger.Logger)

	// Initialize services
	credentialStore := services.NewCredentialStore(userRepo, cfg.Security.BcryptCost, logger.Logger)
	authService := services.NewAuthService(credentialStore, tokenService, logger.Logger)
	communityService := services.NewCommunityService(
		communityRepo,
		storage.NewLocalStorage(cfg.Upload.Dir),
		notifier,
		cfg.Upload.MaxFileSize,
		logger.Logger,
	)
	newsService := services.NewNewsService(newsRepo, logger.Logger)
	carouselService := services.NewCarouselService(carouselRepo, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	communityHandler := handlers.NewCommunityHandler(communityService, logger.Logger)
	contentHandler := handlers.NewContentHandler(newsService, carouselService, logger.Logger)
	healthHandler := handlers.NewHealthHandler(healthChecks, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenService, logger.Logger)
	adminMiddleware := middleware.RoleMiddleware(tokenService, models.NewRoleSet(models.RoleAdministrator), logger.Logger)
	loginLimiter := httprate.LimitByIP(cfg.RateLimit.LoginRequestsPerMinute, time.Minute)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(metrics.InstrumentHandler)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize))

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authMiddleware, loginLimiter)
		communityHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
		contentHandler.RegisterRoutes(r, adminMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("notifications", cfg.Notifications.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Migrations live next to the binary or one level up when running from cmd
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
