// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database      DatabaseConfig
	Redis         RedisConfig
	Server        ServerConfig
	Logging       LoggingConfig
	CORS          CORSConfig
	JWT           JWTConfig
	Security      SecurityConfig
	Upload        UploadConfig
	RateLimit     RateLimitConfig
	Notifications NotificationsConfig
	SMTP          SMTPConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           int
	MaxRequestSize int64
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

// SecurityConfig holds password hashing settings
type SecurityConfig struct {
	BcryptCost int
}

// UploadConfig holds document upload settings
type UploadConfig struct {
	Dir         string
	MaxFileSize int64
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	RequestsPerMinute      int
	LoginRequestsPerMinute int
}

// NotificationsConfig holds decision notification settings
type NotificationsConfig struct {
	Enabled        bool
	DigestSchedule string
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	if cfg.Server.Port, err = intFromEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Server.MaxRequestSize, err = int64FromEnv("MAX_REQUEST_SIZE", 32<<20); err != nil {
		return nil, err
	}

	// Logging configuration
	cfg.Logging.Level = stringFromEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	tokenExpiry, err := time.ParseDuration(stringFromEnv("JWT_TOKEN_EXPIRY", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TOKEN_EXPIRY: %w", err)
	}
	if tokenExpiry <= 0 {
		return nil, fmt.Errorf("JWT_TOKEN_EXPIRY must be positive")
	}
	cfg.JWT.TokenExpiry = tokenExpiry

	if cfg.Security.BcryptCost, err = intFromEnv("BCRYPT_COST", 10); err != nil {
		return nil, err
	}

	// Upload configuration
	cfg.Upload.Dir = stringFromEnv("UPLOAD_DIR", "uploads")
	if cfg.Upload.MaxFileSize, err = int64FromEnv("UPLOAD_MAX_FILE_SIZE", 10<<20); err != nil {
		return nil, err
	}

	// Rate limits
	if cfg.RateLimit.RequestsPerMinute, err = intFromEnv("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimit.LoginRequestsPerMinute, err = intFromEnv("LOGIN_RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return nil, err
	}

	// Notifications (optional, need Redis and SMTP when enabled)
	notificationsEnabled, err := strconv.ParseBool(stringFromEnv("NOTIFICATIONS_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATIONS_ENABLED: %w", err)
	}
	cfg.Notifications.Enabled = notificationsEnabled
	cfg.Notifications.DigestSchedule = stringFromEnv("DIGEST_SCHEDULE", "0 8 * * *")

	// Redis configuration
	cfg.Redis.Host = stringFromEnv("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = intFromEnv("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	if cfg.Redis.DB, err = intFromEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// SMTP configuration
	cfg.SMTP.Host = stringFromEnv("SMTP_HOST", "localhost")
	if cfg.SMTP.Port, err = intFromEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME") // optional
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD") // optional
	cfg.SMTP.From = stringFromEnv("SMTP_FROM", "noreply@comunidades-energeticas.org")

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

func stringFromEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func int64FromEnv(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}

// parseOrigins splits a comma-separated origin list.
// An empty list allows all origins.
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
