package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/energycommunities/backend/internal/config"
	"github.com/energycommunities/backend/internal/logger"
	"github.com/energycommunities/backend/internal/notifications"
	"github.com/energycommunities/backend/internal/repositories"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const digestTimeout = time.Minute

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

	logger.Logger.Info("Starting notification worker")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Initialize repositories
	communityRepo := repositories.NewCommunityRepository(db, logger.Logger)
	userRepo := repositories.NewUserRepository(db, logger.Logger)

	mailer := notifications.NewSMTPMailer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)
	worker := NewWorker(logger.Logger, communityRepo, userRepo, mailer)

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				notifications.QueueNotifications: 1,
			},
		},
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(notifications.TypeApplicationDecided, worker.HandleApplicationDecided)

	// Schedule the pending applications digest
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Notifications.DigestSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()
		if err := worker.RunPendingDigest(ctx); err != nil {
			logger.Logger.Error("Failed to send pending digest", zap.Error(err))
		}
	})
	if err != nil {
		logger.Logger.Fatal("Invalid digest schedule",
			zap.String("schedule", cfg.Notifications.DigestSchedule),
			zap.Error(err),
		)
	}
	scheduler.Start()

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started", zap.String("digest_schedule", cfg.Notifications.DigestSchedule))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	<-scheduler.Stop().Done()
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
